package repository

import (
	"context"
	"database/sql"
	"errors"

	"classtime/core/database"
	"classtime/core/logger"
	"classtime/modules/auth/entity"

	"github.com/jmoiron/sqlx"
)

const studentColumns = `student_id, nickname, email, password, name, surname, photo_link, created_at, updated_at`

func (r *AuthRepository) getStudent(ctx context.Context, where string, arg any) (*entity.Student, error) {
	var student entity.Student
	query := `SELECT ` + studentColumns + ` FROM student WHERE ` + where
	err := r.DB.GetContext(ctx, &student, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *AuthRepository) GetStudentByID(ctx context.Context, studentID int64) (*entity.Student, error) {
	student, err := r.getStudent(ctx, `student_id = $1`, studentID)
	if err != nil {
		logger.Error("AuthRepository:GetStudentByID:Error", "error", err, "student_id", studentID)
	}
	return student, err
}

func (r *AuthRepository) GetStudentByEmail(ctx context.Context, email string) (*entity.Student, error) {
	student, err := r.getStudent(ctx, `LOWER(email) = LOWER($1)`, email)
	if err != nil {
		logger.Error("AuthRepository:GetStudentByEmail:Error", "error", err)
	}
	return student, err
}

func (r *AuthRepository) GetStudentByNickname(ctx context.Context, nickname string) (*entity.Student, error) {
	student, err := r.getStudent(ctx, `LOWER(nickname) = LOWER($1)`, nickname)
	if err != nil {
		logger.Error("AuthRepository:GetStudentByNickname:Error", "error", err)
	}
	return student, err
}

const insertStudent = `
	INSERT INTO student (nickname, email, password, name, surname, photo_link, created_at, updated_at)
	VALUES (:nickname, :email, :password, :name, :surname, :photo_link, NOW(), NOW())
	RETURNING student_id, created_at, updated_at
`

func insertStudentTx(ctx context.Context, tx sqlx.ExtContext, student *entity.Student) error {
	rows, err := sqlx.NamedQueryContext(ctx, tx, insertStudent, student)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&student.StudentID, &student.CreatedAt, &student.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *AuthRepository) CreateStudent(ctx context.Context, student *entity.Student) error {
	if err := insertStudentTx(ctx, r.DB.SQLx(), student); err != nil {
		if !database.IsUniqueViolation(err) {
			logger.Error("AuthRepository:CreateStudent:Error", "error", err)
		}
		return err
	}
	return nil
}

func (r *AuthRepository) UpdateStudentPassword(ctx context.Context, studentID int64, password string) error {
	query := `UPDATE student SET password = $2, updated_at = NOW() WHERE student_id = $1`
	if err := r.DB.ExecContext(ctx, query, studentID, password); err != nil {
		logger.Error("AuthRepository:UpdateStudentPassword:Error", "error", err, "student_id", studentID)
		return err
	}
	return nil
}
