package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffNumber string    `gorm:"type:varchar(20);uniqueIndex:uq_employee_staff_number;not null"`
	FullName    string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex:uq_employee_email;not null"`
	Department  string    `gorm:"type:varchar(255)"`
	Position    string    `gorm:"type:varchar(255)"`
	HireDate    time.Time
	IsActive    bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
