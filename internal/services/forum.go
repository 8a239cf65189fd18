package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type CreatePostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type ListPostsInput struct {
	Tag      string
	AuthorID *uuid.UUID
	Limit    int
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type ForumService interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*types.ForumPost, error)
	ListPosts(ctx context.Context, in ListPostsInput) ([]*types.ForumPost, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*types.ForumPost, error)
	AddComment(ctx context.Context, postID uuid.UUID, content string) (*types.ForumComment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*types.ForumComment, error)
	DeletePost(ctx context.Context, postID uuid.UUID) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	LikePost(ctx context.Context, postID uuid.UUID) (LikeResult, error)
	LikedPosts(ctx context.Context) ([]uuid.UUID, error)
}

type forumService struct {
	db       *gorm.DB
	log      *logger.Logger
	clock    clock.Clock
	users    repos.UserRepo
	posts    repos.ForumPostRepo
	comments repos.ForumCommentRepo
	likes    repos.PostLikeRepo
}

func NewForumService(
	db *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	posts repos.ForumPostRepo,
	comments repos.ForumCommentRepo,
	likes repos.PostLikeRepo,
) ForumService {
	return &forumService{
		db:       db,
		log:      log.With("service", "ForumService"),
		clock:    clk,
		users:    users,
		posts:    posts,
		comments: comments,
		likes:    likes,
	}
}

func (fs *forumService) CreatePost(ctx context.Context, in CreatePostInput) (*types.ForumPost, error) {
	const op = "ForumService.CreatePost"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, validation(op, "title and content are required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	name, photo, err := fs.author(dbc, op, userID)
	if err != nil {
		return nil, err
	}
	tags, _ := json.Marshal(cleanTags(in.Tags))
	now := fs.clock.Now().UTC()
	post := &types.ForumPost{
		UserID:       userID,
		Title:        title,
		Content:      content,
		Tags:         datatypes.JSON(tags),
		UserName:     name,
		UserPhotoURL: photo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := fs.posts.Create(dbc, post); err != nil {
		fs.log.Warn("create post failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return post, nil
}

func (fs *forumService) ListPosts(ctx context.Context, in ListPostsInput) ([]*types.ForumPost, error) {
	const op = "ForumService.ListPosts"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	limit := clampLimit(in.Limit, 50, 200)
	tag := strings.ToLower(strings.TrimSpace(in.Tag))
	fetch := limit
	if tag != "" {
		fetch = 500
	}
	posts, err := fs.posts.List(dbctx.Context{Ctx: ctx}, in.AuthorID, fetch)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if tag == "" {
		return posts, nil
	}
	out := make([]*types.ForumPost, 0, limit)
	for _, p := range posts {
		if hasTag(p.Tags, tag) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (fs *forumService) GetPost(ctx context.Context, postID uuid.UUID) (*types.ForumPost, error) {
	const op = "ForumService.GetPost"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	post, err := fs.posts.GetByID(dbctx.Context{Ctx: ctx}, postID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return post, nil
}

func (fs *forumService) AddComment(ctx context.Context, postID uuid.UUID, content string) (*types.ForumComment, error) {
	const op = "ForumService.AddComment"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validation(op, "content is required")
	}
	name, photo, err := fs.author(dbctx.Context{Ctx: ctx}, op, userID)
	if err != nil {
		return nil, err
	}
	comment := &types.ForumComment{
		PostID:       postID,
		UserID:       userID,
		Content:      content,
		UserName:     name,
		UserPhotoURL: photo,
		CreatedAt:    fs.clock.Now().UTC(),
	}
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := fs.posts.GetByID(inner, postID); err != nil {
			return err
		}
		if err := fs.comments.Create(inner, comment); err != nil {
			return err
		}
		return fs.posts.IncrementComments(inner, postID, 1)
	})
	if err != nil {
		fs.log.Warn("add comment failed", "post_id", postID, "error", err)
		return nil, storeErr(op, err)
	}
	return comment, nil
}

func (fs *forumService) ListComments(ctx context.Context, postID uuid.UUID) ([]*types.ForumComment, error) {
	const op = "ForumService.ListComments"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	rows, err := fs.comments.ListByPost(dbctx.Context{Ctx: ctx}, postID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (fs *forumService) DeletePost(ctx context.Context, postID uuid.UUID) error {
	const op = "ForumService.DeletePost"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	post, err := fs.posts.GetByID(dbctx.Context{Ctx: ctx}, postID)
	if err != nil {
		return storeErr(op, err)
	}
	if post.UserID != userID {
		return unauthorized(op, "only the author can delete this post")
	}
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := fs.comments.DeleteByPost(inner, postID); err != nil {
			return err
		}
		if err := fs.likes.DeleteByPost(inner, postID); err != nil {
			return err
		}
		return fs.posts.Delete(inner, postID)
	})
	if err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (fs *forumService) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	const op = "ForumService.DeleteComment"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		comment, err := fs.comments.GetByID(inner, commentID)
		if err != nil {
			return err
		}
		if comment.UserID != userID {
			return unauthorized(op, "only the author can delete this comment")
		}
		if err := fs.comments.Delete(inner, commentID); err != nil {
			return err
		}
		return fs.posts.IncrementComments(inner, comment.PostID, -1)
	})
	if err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (fs *forumService) LikePost(ctx context.Context, postID uuid.UUID) (LikeResult, error) {
	const op = "ForumService.LikePost"
	userID, err := callerID(ctx, op)
	if err != nil {
		return LikeResult{}, err
	}
	var out LikeResult
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := fs.posts.GetByID(inner, postID); err != nil {
			return err
		}
		removed, err := fs.likes.Delete(inner, userID, postID)
		if err != nil {
			return err
		}
		delta := -1
		if !removed {
			inserted, err := fs.likes.Insert(inner, &types.PostLike{PostID: postID, UserID: userID, CreatedAt: fs.clock.Now().UTC()})
			if err != nil {
				return err
			}
			delta = 0
			if inserted {
				delta = 1
			}
			out.Liked = true
		}
		if delta != 0 {
			if err := fs.posts.IncrementLikes(inner, postID, delta); err != nil {
				return err
			}
		}
		post, err := fs.posts.GetByID(inner, postID)
		if err != nil {
			return err
		}
		out.Likes = post.Likes
		return nil
	})
	if err != nil {
		return LikeResult{}, storeErr(op, err)
	}
	return out, nil
}

func (fs *forumService) LikedPosts(ctx context.Context) ([]uuid.UUID, error) {
	const op = "ForumService.LikedPosts"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	ids, err := fs.likes.ListPostIDsByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return ids, nil
}

func (fs *forumService) author(dbc dbctx.Context, op string, userID uuid.UUID) (string, string, error) {
	users, err := fs.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return "", "", storeErr(op, err)
	}
	if len(users) == 0 {
		return "", "", notFound(op, "user not found")
	}
	name := strings.TrimSpace(users[0].DisplayName)
	if name == "" {
		name = "Anonymous"
	}
	return name, users[0].PhotoURL, nil
}

func hasTag(raw datatypes.JSON, tag string) bool {
	var tags []string
	if len(raw) == 0 || json.Unmarshal(raw, &tags) != nil {
		return false
	}
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}
