package course

import "gorm.io/gorm"

// Module is an ordered section of a course.
type Module struct {
	gorm.Model
	CourseID uint     `json:"course_id" gorm:"uniqueIndex:idx_module_course_order;not null"`
	Title    string   `json:"title" gorm:"size:200;not null"`
	Order    int      `json:"order" gorm:"column:sort_order;uniqueIndex:idx_module_course_order;not null"`
	Lessons  []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}
