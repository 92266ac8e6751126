package service

import (
	"aware_backend/internal/model"
	"aware_backend/internal/repository"
	"aware_backend/internal/util"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// 文本抽取上限，超出部分截断，避免 longtext 被超大文件撑爆
const maxTextContent = 512 * 1024

type MaterialService struct {
	Materials *repository.MaterialRepository
	Courses   *CourseService
	Storage   StorageProvider
}

func NewMaterialService(materials *repository.MaterialRepository, courses *CourseService, storage StorageProvider) *MaterialService {
	return &MaterialService{Materials: materials, Courses: courses, Storage: storage}
}

type UploadMaterialReq struct {
	CourseID    string
	Topic       string
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Upload 上传课程资料：先落到临时文件，视频走 ffprobe 取时长，
// 文本类文件抽取内容供出题使用，最后推给存储后端
func (s *MaterialService) Upload(ctx context.Context, professorID uint, req UploadMaterialReq) (*model.CourseMaterial, error) {
	if _, err := s.Courses.GetOwnedCourse(professorID, req.CourseID); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "material-*")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, req.Reader); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	material := &model.CourseMaterial{
		CourseID:    req.CourseID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		Topic:       req.Topic,
	}

	if isVideo(req.ContentType, req.Filename) {
		// 探测失败不阻断上传，时长留 0
		if info, err := util.ProbeVideo(tmpPath); err == nil {
			material.VideoDuration = info.Duration
		}
	} else if isTextual(req.ContentType, req.Filename) {
		text, err := readTextFile(tmpPath)
		if err == nil {
			material.TextContent = text
		}
	}

	key := fmt.Sprintf("materials/%s/%s_%s", req.CourseID, model.GenerateUUID(), req.Filename)
	if err := s.Storage.PutFile(ctx, key, tmpPath, req.ContentType); err != nil {
		return nil, err
	}
	material.StorageKey = key

	if err := s.Materials.Create(material); err != nil {
		// 元数据落库失败时回收已上传的对象
		_ = s.Storage.Remove(ctx, key)
		return nil, err
	}
	return material, nil
}

func isVideo(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".mov", ".mkv", ".avi", ".webm":
		return true
	}
	return false
}

func isTextual(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".csv", ".json", ".c", ".h", ".go", ".py":
		return true
	}
	return false
}

func readTextFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxTextContent))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *MaterialService) List(courseID string) ([]model.CourseMaterial, error) {
	return s.Materials.ListByCourse(courseID)
}

// Download 返回文件流和元数据，调用方负责 Close
func (s *MaterialService) Download(ctx context.Context, courseID, materialID string) (io.ReadCloser, *model.CourseMaterial, error) {
	material, err := s.Materials.FindByID(materialID)
	if err != nil {
		return nil, nil, err
	}
	if material == nil || material.CourseID != courseID {
		return nil, nil, util.ErrMaterialNotFound
	}

	rc, err := s.Storage.Fetch(ctx, material.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return rc, material, nil
}

func (s *MaterialService) Delete(ctx context.Context, professorID uint, courseID, materialID string) error {
	if _, err := s.Courses.GetOwnedCourse(professorID, courseID); err != nil {
		return err
	}

	material, err := s.Materials.FindByID(materialID)
	if err != nil {
		return err
	}
	if material == nil || material.CourseID != courseID {
		return util.ErrMaterialNotFound
	}

	if material.StorageKey != "" {
		_ = s.Storage.Remove(ctx, material.StorageKey)
	}
	return s.Materials.Delete(materialID)
}

// ContentForTopic 汇总某主题下已抽取的资料文本，作为出题素材；
// 没有资料时退回课程大纲里的主题内容
func (s *MaterialService) ContentForTopic(ctx context.Context, courseID, topic string) (string, error) {
	materials, err := s.Materials.ListByTopic(courseID, topic)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, m := range materials {
		if m.TextContent != "" {
			parts = append(parts, m.TextContent)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n"), nil
	}

	return s.Courses.GetTopicContent(ctx, courseID, topic)
}
