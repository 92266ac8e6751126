package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUsernameTaken       = errors.New("用户名已被注册")
	ErrInvalidRole         = errors.New("invalid role, must be student or professor")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAlreadyLoggedIn     = errors.New("user is already logged in, please logout first")
	ErrTokenRevoked        = errors.New("token has been revoked or not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrCoursePlanMissing   = errors.New("course plan not available")
	ErrTopicNotFound       = errors.New("topic not found in course")
	ErrNotEnrolled         = errors.New("student not enrolled in course")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrTestResultNotFound  = errors.New("test result not found")
	ErrEmptyRoster         = errors.New("no valid students found in roster file")
	ErrInvalidProficiency  = errors.New("invalid proficiency level")
	ErrAIResponseMalformed = errors.New("AI response is not valid test JSON")
	ErrAINotConfigured     = errors.New("AI api key not configured")
)
