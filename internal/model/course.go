package model

import "encoding/json"

// Course 教授创建的课程，course plan 为前端上传的大纲 JSON（label/children 树）
// swagger:model Course
type Course struct {
	UUIDBase
	Name               string          `gorm:"size:255;not null" json:"courseName"`
	ProfessorID        uint            `gorm:"index;type:bigint unsigned" json:"professorId"`
	Professor          *User           `gorm:"foreignKey:ProfessorID" json:"professor,omitempty"`
	DefaultProficiency string          `gorm:"size:20;default:'intermediate'" json:"defaultProficiency"`
	Plan               json.RawMessage `gorm:"type:json" json:"coursePlan,omitempty"`
	Objectives         string          `gorm:"type:text" json:"objectives,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// RosterEntry 点名册条目，从教授上传的 CSV/XLSX 解析
type RosterEntry struct {
	BaseModel
	CourseID    string `gorm:"index;type:varchar(36);uniqueIndex:idx_roster_course_email" json:"courseId"`
	StudentName string `gorm:"size:128;not null" json:"studentName"`
	Email       string `gorm:"size:128;not null;uniqueIndex:idx_roster_course_email" json:"emailId"`
}

func (RosterEntry) TableName() string {
	return "roster_entries"
}

// CourseMaterial 课程资料元数据，文件本体走 StorageProvider
type CourseMaterial struct {
	UUIDBase
	CourseID      string  `gorm:"index;type:varchar(36)" json:"courseId"`
	Filename      string  `gorm:"size:255;not null" json:"filename"`
	ContentType   string  `gorm:"size:100" json:"contentType"`
	Size          int64   `gorm:"default:0" json:"size"`
	StorageKey    string  `gorm:"size:512" json:"storageKey"`
	Topic         string  `gorm:"size:255" json:"topic,omitempty"`
	TextContent   string  `gorm:"type:longtext" json:"-"`
	VideoDuration float64 `gorm:"default:0" json:"videoDuration,omitempty"` // seconds
}

func (CourseMaterial) TableName() string {
	return "course_materials"
}
