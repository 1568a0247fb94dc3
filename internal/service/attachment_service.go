package service

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"time"

	"anoa.com/wikigradebook/internal/dto"
	"anoa.com/wikigradebook/internal/model"
	"anoa.com/wikigradebook/internal/repository"
	"anoa.com/wikigradebook/pkg/storage"
	"github.com/google/uuid"
)

type AttachmentService interface {
	UploadAttachment(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error)
	CleanupOrphanAttachments(ctx context.Context) error
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, fileStorage storage.FileStorage) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error) {
	if s.fileStorage == nil {
		return nil, errors.New("file storage is not configured")
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	url, err := s.fileStorage.UploadFile(ctx, f, "handouts", file.Filename)
	if err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		UserID:   userID,
		FileURL:  url,
		FileType: file.Header.Get("Content-Type"),
		// AssignmentID stays nil until the assignment is saved
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	return &dto.UploadAttachmentResponse{
		ID:       attachment.ID,
		FileURL:  attachment.FileURL,
		FileType: attachment.FileType,
	}, nil
}

func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) error {
	// Files uploaded but never linked to a saved assignment within a day
	// are garbage.
	cutoff := time.Now().Add(-24 * time.Hour)

	orphans, err := s.attachmentRepo.FindOrphans(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteFile(ctx, orphan.FileURL); err != nil {
			// Storage delete failures are retried on the next run.
			continue
		}

		if err := s.attachmentRepo.Delete(ctx, orphan.ID); err != nil {
			// The next run picks the row up again.
			log.Printf("failed to delete orphan attachment %d: %v", orphan.ID, err)
		}
	}
	return nil
}
