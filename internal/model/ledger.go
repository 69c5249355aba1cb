package model

import "time"

const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote 每个用户对每条提示词至多一票，(user_id, prompt_id) 为联合主键
type Vote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user"`
	PromptID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"prompt"`
	Value     int       `gorm:"type:smallint;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// Bookmark 只记录是否收藏
type Bookmark struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user"`
	PromptID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
