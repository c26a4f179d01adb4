package mapper

import (
	"classtime/modules/auth/dto"
	"classtime/modules/auth/entity"
)

func ToSessionUser(student *entity.Student) dto.SessionUser {
	if student == nil {
		return dto.SessionUser{}
	}
	return dto.SessionUser{
		StudentID: student.StudentID,
		Nickname:  student.Nickname,
		Email:     student.Email,
		Name:      student.Name,
		Surname:   student.Surname,
		Picture:   student.PhotoLink,
	}
}
