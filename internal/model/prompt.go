package model

type PromptStatus string

const (
	StatusPending         PromptStatus = "pending"
	StatusApproved        PromptStatus = "approved"
	StatusRejected        PromptStatus = "rejected"
	StatusPendingDeletion PromptStatus = "pending_deletion"
)

func (s PromptStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPendingDeletion:
		return true
	}
	return false
}

// Choice 下拉选项（值 + 展示名）
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var TaskTypeChoices = []Choice{
	{"create_content", "Create Content"},
	{"create_code", "Create Code"},
	{"research", "Research"},
	{"deep_research", "Deep Research / Analysis"},
	{"plan_organize", "Plan & Organize"},
	{"ideate", "Ideate / Brainstorm"},
	{"summarize", "Summarize / Review"},
	{"explain", "Explain / Teach"},
	{"optimize", "Optimize / Improve"},
}

var OutputFormatChoices = []Choice{
	{"text", "Text"},
	{"code", "Code"},
	{"chart_graph", "Chart / Graph"},
	{"checklist_table", "Checklist / Table"},
	{"template_framework", "Template / Framework"},
	{"image_visual", "Image / Visual"},
	{"slide_report", "Slide / Report"},
}

// CategoryChoices 预置分类，用户也可以自定义分类
var CategoryChoices = []Choice{
	{"marketing", "Marketing"},
	{"sales", "Sales"},
	{"engineering", "Engineering"},
	{"design", "Design"},
	{"product_management", "Product Management"},
	{"hr", "Human Resources (HR)"},
	{"finance", "Finance"},
	{"support", "Customer Support"},
	{"content_comms", "Content & Communications"},
	{"learning", "Learning & Development"},
}

func findChoice(choices []Choice, value string) (Choice, bool) {
	for _, c := range choices {
		if c.Value == value {
			return c, true
		}
	}
	return Choice{}, false
}

func IsValidTaskType(v string) bool {
	_, ok := findChoice(TaskTypeChoices, v)
	return ok
}

func IsValidOutputFormat(v string) bool {
	_, ok := findChoice(OutputFormatChoices, v)
	return ok
}

// TaskTypeLabel 未知取值原样返回
func TaskTypeLabel(v string) string {
	if c, ok := findChoice(TaskTypeChoices, v); ok {
		return c.Label
	}
	return v
}

func OutputFormatLabel(v string) string {
	if c, ok := findChoice(OutputFormatChoices, v); ok {
		return c.Label
	}
	return v
}

// swagger:model Prompt
type Prompt struct {
	BaseModel
	UserID       *uint        `gorm:"index" json:"user"`
	User         *User        `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"prompt_description"`
	Text         string       `gorm:"type:text;not null" json:"prompt_text"`
	Guidance     string       `gorm:"type:text" json:"guidance"`
	TaskType     string       `gorm:"size:50;not null" json:"task_type"`
	OutputFormat string       `gorm:"size:50;not null" json:"output_format"`
	Category     string       `gorm:"size:50;not null;index" json:"category"`
	Status       PromptStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Vote         int          `gorm:"not null;default:0" json:"vote"`
	LikeCount    int          `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int          `gorm:"not null;default:0" json:"dislike_count"`
}

func (Prompt) TableName() string {
	return "prompts"
}

func (p *Prompt) OwnedBy(userID uint) bool {
	return p.UserID != nil && *p.UserID == userID
}
