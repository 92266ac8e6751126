package model

// Enrollment 学生与课程的绑定关系，(student_id, course_id) 唯一。
// ProficiencyLevel 在首次分类或教授手动指定前可以为空。
// ManualOverride 置位后，自动分类结果不再覆盖教授手动设置的等级。
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID        uint    `gorm:"uniqueIndex:idx_enrollment_student_course;type:bigint unsigned" json:"studentId"`
	Student          *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CourseID         string  `gorm:"uniqueIndex:idx_enrollment_student_course;type:varchar(36)" json:"courseId"`
	ProficiencyLevel *string `gorm:"size:20" json:"proficiencyLevel"`
	ManualOverride   bool    `gorm:"default:false" json:"manualOverride"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
