package service

import (
	"errors"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"

	"gorm.io/gorm"
)

// Actor 发起请求的用户
type Actor struct {
	UserID   uint
	Username string
	IsStaff  bool
}

func ActorFromUser(u *model.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff()}
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

// Scope 请求上下文：谁在访问，以及是否带了 mine=1
type Scope struct {
	Actor Actor
	Mine  bool
}

func (s Scope) visibility() repository.Visibility {
	return repository.Visibility{
		ViewerID:   s.Actor.UserID,
		All:        s.Actor.IsStaff,
		IncludeOwn: s.Mine,
	}
}

// canWrite 审核员可写任意提示词，其他人只能写自己的
func canWrite(a Actor, p *model.Prompt) bool {
	if !a.Authenticated() {
		return false
	}
	return a.IsStaff || p.OwnedBy(a.UserID)
}

func translateNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
