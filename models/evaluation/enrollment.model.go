package evaluation

import (
	"time"

	"cursapp/models"
	"cursapp/models/course"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Enrollment is a student's purchase of one course. At most one non-failed row
// exists per (student, course); database.RunMigrations adds the partial unique index.
type Enrollment struct {
	gorm.Model
	StudentID        uint             `json:"student_id" gorm:"index;not null"`
	Student          *models.User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	CourseID         uint             `json:"course_id" gorm:"index;not null"`
	Course           *course.Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CouponID         *uint            `json:"coupon_id" gorm:"index"`
	PricePaidUSD     decimal.Decimal  `json:"price_paid_usd" gorm:"type:decimal(10,2);not null"`
	PaymentStatus    PaymentStatus    `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentReference *string          `json:"payment_reference" gorm:"uniqueIndex;size:120"`
	PaymentPayload   datatypes.JSON   `json:"payment_payload,omitempty"`
	PaidAt           *time.Time       `json:"paid_at"`
	Completed        bool             `json:"completed" gorm:"default:false"`
	ProgressPercent  decimal.Decimal  `json:"progress_percent" gorm:"type:decimal(5,2);not null;default:0"`
	FinalGrade       *decimal.Decimal `json:"final_grade" gorm:"type:decimal(5,2)"`
}

func (e Enrollment) IsPaid() bool { return e.PaymentStatus == PaymentPaid }

type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementPaid    SettlementStatus = "paid"
)

// Settlement is the revenue split owed for one paid enrollment.
type Settlement struct {
	gorm.Model
	EnrollmentID      uint             `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	Enrollment        *Enrollment      `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	InstructorID      *uint            `json:"instructor_id" gorm:"index"`
	Total             decimal.Decimal  `json:"total" gorm:"type:decimal(10,2);not null"`
	PlatformCut       decimal.Decimal  `json:"platform_cut" gorm:"type:decimal(10,2);not null"`
	InstructorCut     decimal.Decimal  `json:"instructor_cut" gorm:"type:decimal(10,2);not null"`
	CommissionPercent decimal.Decimal  `json:"commission_percent" gorm:"type:decimal(5,2);not null"`
	Status            SettlementStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt            *time.Time       `json:"paid_at"`
}
