package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-client/internal/entity"
	"blog-client/internal/imageset"
	"blog-client/pkg/auth"
	"blog-client/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testUser = auth.User{Email: "a@x.com", DisplayName: "Ada"}

func completeFields(s *FormSession) {
	s.Fields.Title = "Trail Notes"
	s.Fields.Summary = "A short walk"
	s.Fields.Description = "A longer account of the walk."
	s.Fields.Category = "hiking"
	s.Fields.Subcategory = "nature"
}

func TestNewCreateSession_PinsIdentity(t *testing.T) {
	session := NewCreateSession(new(MockPostRepository), testUser, logger.New())

	assert.Equal(t, StateOpen, session.State())
	assert.False(t, session.Editing())
	assert.Equal(t, "Ada", session.Fields.Author)
	assert.Equal(t, "a@x.com", session.Fields.AuthorEmail)
	assert.Empty(t, session.Fields.Title)
	assert.Zero(t, session.Images().Len())
}

func TestNewEditSession_SeededAndRePinned(t *testing.T) {
	post := entity.Post{
		ID:          "post-1",
		Title:       "Old Title",
		Summary:     "Old summary",
		Description: "Old description",
		Author:      "Someone Else",
		AuthorEmail: "b@x.com",
		Category:    "tech",
		Subcategory: "ai",
		Images:      []string{"https://cdn/1.jpg", "https://cdn/2.jpg"},
	}
	session := NewEditSession(new(MockPostRepository), testUser, post, logger.New())

	assert.True(t, session.Editing())
	assert.Equal(t, "Old Title", session.Fields.Title)
	assert.Equal(t, "tech", session.Fields.Category)

	// Authorship is re-pinned to the editing user, not the stored author.
	assert.Equal(t, "Ada", session.Fields.Author)
	assert.Equal(t, "a@x.com", session.Fields.AuthorEmail)

	assert.Equal(t, 2, session.Images().Len())
	assert.Empty(t, session.Images().WireImages())
}

func TestSubmit_Create(t *testing.T) {
	mockRepo := new(MockPostRepository)
	session := NewCreateSession(mockRepo, testUser, logger.New())
	completeFields(session)
	session.Images().Append(imageset.Local{Name: "a.jpg", Data: []byte("aaa")})

	var gotFields entity.FormFields
	var gotImages []imageset.Local
	mockRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotFields = args.Get(1).(entity.FormFields)
			gotImages = args.Get(2).([]imageset.Local)
		}).
		Return(nil)

	err := session.Submit(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "Trail Notes", gotFields.Title)
	assert.Equal(t, "a@x.com", gotFields.AuthorEmail)
	assert.Len(t, gotImages, 1)
	assert.Equal(t, StateClosed, session.State())
	mockRepo.AssertExpectations(t)
}

func TestSubmit_ValidationBlocksAndKeepsSessionOpen(t *testing.T) {
	mockRepo := new(MockPostRepository)
	session := NewCreateSession(mockRepo, testUser, logger.New())
	completeFields(session)
	session.Fields.Title = ""

	err := session.Submit(context.Background())

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, StateOpen, session.State())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidate_EachRequiredField(t *testing.T) {
	for _, field := range []string{"title", "summary", "description", "category", "subcategory"} {
		session := NewCreateSession(new(MockPostRepository), testUser, logger.New())
		completeFields(session)
		switch field {
		case "title":
			session.Fields.Title = " "
		case "summary":
			session.Fields.Summary = ""
		case "description":
			session.Fields.Description = ""
		case "category":
			session.Fields.Category = ""
		case "subcategory":
			session.Fields.Subcategory = ""
		}

		err := session.Validate()
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Equal(t, field, vErr.Field)
	}
}

func TestSubmit_TransportFailureStillCloses(t *testing.T) {
	mockRepo := new(MockPostRepository)
	session := NewCreateSession(mockRepo, testUser, logger.New())
	completeFields(session)

	mockRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused"))

	err := session.Submit(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateClosed, session.State())
}

func TestSubmit_Edit_RoundTrip(t *testing.T) {
	post := entity.Post{
		ID:          "post-7",
		Title:       "Fetched Title",
		Summary:     "Fetched summary",
		Description: "Fetched description",
		Author:      "Ada",
		AuthorEmail: "a@x.com",
		Category:    "travel",
		Subcategory: "adventure",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Images:      []string{"https://cdn/1.jpg"},
	}
	mockRepo := new(MockPostRepository)
	session := NewEditSession(mockRepo, testUser, post, logger.New())

	var gotFields entity.FormFields
	var gotImages []imageset.Local
	mockRepo.On("Update", mock.Anything, "post-7", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotFields = args.Get(2).(entity.FormFields)
			gotImages = args.Get(3).([]imageset.Local)
		}).
		Return(nil)

	// Zero field changes, zero image changes: the update must carry the
	// originally fetched values unchanged (the session user here matches
	// the stored author, so re-pinning is invisible).
	err := session.Submit(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, entity.FormFields{
		Author:      "Ada",
		AuthorEmail: "a@x.com",
		Title:       "Fetched Title",
		Category:    "travel",
		Subcategory: "adventure",
		Summary:     "Fetched summary",
		Description: "Fetched description",
	}, gotFields)
	assert.Empty(t, gotImages)
	assert.Equal(t, StateClosed, session.State())
}

func TestSubmit_EditSendsOnlyPendingImages(t *testing.T) {
	post := entity.Post{
		ID:          "post-7",
		Title:       "T",
		Summary:     "S",
		Description: "D",
		Category:    "tech",
		Subcategory: "ai",
		Images:      []string{"https://cdn/1.jpg", "https://cdn/2.jpg"},
	}
	mockRepo := new(MockPostRepository)
	session := NewEditSession(mockRepo, testUser, post, logger.New())
	session.Images().Append(imageset.Local{Name: "new.jpg", Data: []byte("new")})

	var gotImages []imageset.Local
	mockRepo.On("Update", mock.Anything, "post-7", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotImages = args.Get(3).([]imageset.Local)
		}).
		Return(nil)

	assert.NoError(t, session.Submit(context.Background()))
	assert.Len(t, gotImages, 1)
	assert.Equal(t, "new.jpg", gotImages[0].Name)
}

func TestSubmit_ClosedSession(t *testing.T) {
	session := NewCreateSession(new(MockPostRepository), testUser, logger.New())
	session.Close()

	err := session.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionNotOpen)
}

func TestSubmit_ReleasesPreviewHandles(t *testing.T) {
	mockRepo := new(MockPostRepository)
	session := NewCreateSession(mockRepo, testUser, logger.New())
	completeFields(session)
	session.Images().Append(imageset.Local{Name: "a.jpg", Data: []byte("aaa")})

	_, err := session.Images().Preview(0)
	assert.NoError(t, err)
	assert.Equal(t, 1, session.Images().OpenHandles())

	mockRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	assert.NoError(t, session.Submit(context.Background()))

	assert.Zero(t, session.Images().OpenHandles())
}

func TestDelete(t *testing.T) {
	post := entity.Post{ID: "post-7", Title: "T", Summary: "S", Description: "D", Category: "tech", Subcategory: "ai"}
	mockRepo := new(MockPostRepository)
	session := NewEditSession(mockRepo, testUser, post, logger.New())

	mockRepo.On("Delete", mock.Anything, "post-7").Return(nil)

	err := session.Delete(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, StateClosed, session.State())
	mockRepo.AssertExpectations(t)
}

func TestDelete_CreateSessionHasNoBoundPost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	session := NewCreateSession(mockRepo, testUser, logger.New())

	err := session.Delete(context.Background())

	assert.ErrorIs(t, err, ErrNoBoundPost)
	assert.Equal(t, StateOpen, session.State())
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_FailureStillCloses(t *testing.T) {
	post := entity.Post{ID: "post-7"}
	mockRepo := new(MockPostRepository)
	session := NewEditSession(mockRepo, testUser, post, logger.New())

	mockRepo.On("Delete", mock.Anything, "post-7").Return(errors.New("forbidden"))

	err := session.Delete(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateClosed, session.State())
}

func TestClose_Idempotent(t *testing.T) {
	session := NewCreateSession(new(MockPostRepository), testUser, logger.New())
	session.Close()
	session.Close()
	assert.Equal(t, StateClosed, session.State())
}
