package entity

import "classtime/core/entity"

type Student struct {
	StudentID int64   `db:"student_id"`
	Nickname  *string `db:"nickname"`
	Email     *string `db:"email"`
	Password  *string `db:"password"`
	Name      string  `db:"name"`
	Surname   string  `db:"surname"`
	PhotoLink *string `db:"photo_link"`
	entity.BaseEntity
}

func (s *Student) NicknameOrEmpty() string {
	if s.Nickname == nil {
		return ""
	}
	return *s.Nickname
}

func (s *Student) EmailOrEmpty() string {
	if s.Email == nil {
		return ""
	}
	return *s.Email
}
