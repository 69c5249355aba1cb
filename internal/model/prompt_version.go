package model

import "time"

// PromptVersion 编辑前的提示词快照，创建后不再修改
// swagger:model PromptVersion
type PromptVersion struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PromptID     uint      `gorm:"index;not null" json:"prompt"`
	EditedByID   *uint     `gorm:"index" json:"edited_by"`
	EditedBy     *User     `gorm:"foreignKey:EditedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"version_created_at"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"prompt_description"`
	Text         string    `gorm:"type:text;not null" json:"prompt_text"`
	Guidance     string    `gorm:"type:text" json:"guidance"`
	TaskType     string    `gorm:"size:50;not null" json:"task_type"`
	OutputFormat string    `gorm:"size:50;not null" json:"output_format"`
	Category     string    `gorm:"size:50;not null" json:"category"`
}

func (PromptVersion) TableName() string {
	return "prompt_versions"
}

// NewPromptVersion 复制提示词当前的可编辑字段
func NewPromptVersion(p *Prompt, editorID uint) *PromptVersion {
	v := &PromptVersion{
		PromptID:     p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Text:         p.Text,
		Guidance:     p.Guidance,
		TaskType:     p.TaskType,
		OutputFormat: p.OutputFormat,
		Category:     p.Category,
	}
	if editorID > 0 {
		v.EditedByID = &editorID
	}
	return v
}

// ApplyTo 用快照内容覆盖提示词的可编辑字段
func (v *PromptVersion) ApplyTo(p *Prompt) {
	p.Title = v.Title
	p.Description = v.Description
	p.Text = v.Text
	p.Guidance = v.Guidance
	p.TaskType = v.TaskType
	p.OutputFormat = v.OutputFormat
	p.Category = v.Category
}
