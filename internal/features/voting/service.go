// Package voting — service.go: голосование и награда автору.
//
// Повторный голос отклоняется как безобидный no-op, переключения голоса нет.
// Награда автору — отдельный шаг после фиксации голоса: если он не удался,
// голос остаётся.
package voting

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
)

// Store — хранилище голосов и постов.
type Store interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, postID int64) (*Post, error)
	InsertVote(ctx context.Context, voterID, postID int64) (bool, *Post, error)
	HasVoted(ctx context.Context, voterID, postID int64) (bool, error)
}

// Awarder — диспетчер наград.
type Awarder interface {
	Award(ctx context.Context, userID, amount int64, reason string) (int64, error)
}

type Service struct {
	store     Store
	awarder   Awarder
	publisher events.Publisher
	reward    int64
}

// NewService создаёт сервис голосования. reward — карма автору за голос.
func NewService(store Store, awarder Awarder, publisher events.Publisher, reward int64) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{store: store, awarder: awarder, publisher: publisher, reward: reward}
}

// Vote ставит голос voterID за пост postID.
func (s *Service) Vote(ctx context.Context, voterID, postID int64) (*Outcome, error) {
	if postID <= 0 {
		return nil, common.ErrInvalidID
	}

	inserted, post, err := s.store.InsertVote(ctx, voterID, postID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		PostID:  postID,
		VoterID: voterID,
		Upvotes: post.Upvotes,
	}
	logger := log.WithFields(log.Fields{
		"voter_id":  voterID,
		"post_id":   postID,
		"author_id": post.AuthorID,
	})

	if !inserted {
		out.AlreadyVoted = true
		out.Message = MsgAlreadyVoted
		logger.Debug("Повторный голос отклонён")
		return out, nil
	}
	out.Voted = true
	out.Message = MsgVoted
	logger.Info("Голос учтён")

	if post.AuthorID != voterID && s.reward > 0 {
		if _, err := s.awarder.Award(ctx, post.AuthorID, s.reward, ledger.ReasonPostUpvoted); err != nil {
			logger.WithError(err).Warn("Награда автору не начислена, голос сохранён")
		} else {
			out.Rewarded = true
		}
	}

	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypePostUpvoted,
		UserID: voterID,
		Data: map[string]any{
			"post_id":   postID,
			"author_id": post.AuthorID,
			"upvotes":   post.Upvotes,
			"rewarded":  out.Rewarded,
		},
	}); err != nil {
		logger.WithError(err).Warn("Событие голоса не опубликовано")
	}

	return out, nil
}

// Post возвращает пост со счётчиками.
func (s *Service) Post(ctx context.Context, postID int64) (*Post, error) {
	if postID <= 0 {
		return nil, common.ErrInvalidID
	}
	return s.store.GetPost(ctx, postID)
}

// HasVoted сообщает, голосовал ли пользователь за пост.
func (s *Service) HasVoted(ctx context.Context, voterID, postID int64) (bool, error) {
	return s.store.HasVoted(ctx, voterID, postID)
}

// CreatePost регистрирует пост для голосования.
func (s *Service) CreatePost(ctx context.Context, authorID int64, title string) (*Post, error) {
	if authorID <= 0 {
		return nil, common.ErrInvalidID
	}
	p := &Post{AuthorID: authorID, Title: strings.TrimSpace(title)}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"post_id": p.ID, "author_id": authorID}).Info("Пост зарегистрирован")
	return p, nil
}
