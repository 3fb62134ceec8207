package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const draftIdKey = "biography_draft"

// Session keeps per-browser state that doesn't belong in the token,
// i.e. the biography draft currently being edited
type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) DraftID() uint64 {
	id, _ := s.Get(draftIdKey).(uint64)
	return id
}

func (s *Session) SetDraftID(id uint64) error {
	s.Set(draftIdKey, id)
	return s.Save()
}

func (s *Session) Forget() {
	s.Delete(draftIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = s.Save()
}
