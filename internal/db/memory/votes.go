package memory

import (
	"context"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/voting"
)

func (db *DB) CreatePost(_ context.Context, p *voting.Post) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[p.AuthorID]; !ok {
		return common.ErrUserNotFound
	}
	db.nextPostID++
	p.ID = db.nextPostID
	p.Upvotes = 0
	p.Downvotes = 0
	p.CreatedAt = db.now()
	stored := *p
	db.posts[p.ID] = &stored
	return nil
}

func (db *DB) GetPost(_ context.Context, postID int64) (*voting.Post, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	p, ok := db.posts[postID]
	if !ok {
		return nil, common.ErrPostNotFound
	}
	out := *p
	return &out, nil
}

// InsertVote создаёт голос и увеличивает upvotes под одной блокировкой.
func (db *DB) InsertVote(_ context.Context, voterID, postID int64) (bool, *voting.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.posts[postID]
	if !ok {
		return false, nil, common.ErrPostNotFound
	}
	if _, ok := db.users[voterID]; !ok {
		return false, nil, common.ErrUserNotFound
	}

	key := pairKey{userID: voterID, entityID: postID}
	if _, voted := db.votes[key]; voted {
		out := *p
		return false, &out, nil
	}

	db.votes[key] = db.now()
	p.Upvotes++
	out := *p
	return true, &out, nil
}

func (db *DB) HasVoted(_ context.Context, voterID, postID int64) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.votes[pairKey{userID: voterID, entityID: postID}]
	return ok, nil
}
