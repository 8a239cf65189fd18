package services

import (
	"testing"

	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
)

func TestForumPostLifecycle(t *testing.T) {
	e := newEnv(t)
	fs := e.forumService()
	author := e.user(t, "author@example.com")
	reader := e.user(t, "reader@example.com")

	if _, err := fs.CreatePost(as(author), CreatePostInput{Title: " ", Content: "x"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank title: want validation, got %v", err)
	}
	post, err := fs.CreatePost(as(author), CreatePostInput{Title: "Metronome tips", Content: "Start slow", Tags: []string{"Rhythm", "rhythm", " tips "}})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.UserName != author.DisplayName || string(post.Tags) != `["rhythm","tips"]` {
		t.Fatalf("unexpected post: name=%q tags=%s", post.UserName, post.Tags)
	}
	if _, err := fs.CreatePost(as(reader), CreatePostInput{Title: "Scales", Content: "C major", Tags: []string{"piano"}}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	tagged, err := fs.ListPosts(as(reader), ListPostsInput{Tag: "RHYTHM"})
	if err != nil || len(tagged) != 1 || tagged[0].ID != post.ID {
		t.Fatalf("tag filter: %d posts err=%v", len(tagged), err)
	}
	byAuthor, _ := fs.ListPosts(as(reader), ListPostsInput{AuthorID: &reader.ID})
	if len(byAuthor) != 1 {
		t.Fatalf("author filter: %d posts", len(byAuthor))
	}

	c1, err := fs.AddComment(as(reader), post.ID, "thanks")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := fs.AddComment(as(author), post.ID, "you're welcome"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	got, _ := fs.GetPost(as(reader), post.ID)
	if got.Comments != 2 {
		t.Fatalf("want 2 comments, got %d", got.Comments)
	}
	if err := fs.DeleteComment(as(author), c1.ID); !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("foreign comment delete: want unauthorized, got %v", err)
	}
	if err := fs.DeleteComment(as(reader), c1.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	got, _ = fs.GetPost(as(reader), post.ID)
	if got.Comments != 1 {
		t.Fatalf("want 1 comment after delete, got %d", got.Comments)
	}

	like, err := fs.LikePost(as(reader), post.ID)
	if err != nil || !like.Liked || like.Likes != 1 {
		t.Fatalf("like: %+v err=%v", like, err)
	}
	liked, _ := fs.LikedPosts(as(reader))
	if len(liked) != 1 || liked[0] != post.ID {
		t.Fatalf("LikedPosts: %v", liked)
	}
	unlike, err := fs.LikePost(as(reader), post.ID)
	if err != nil || unlike.Liked || unlike.Likes != 0 {
		t.Fatalf("unlike: %+v err=%v", unlike, err)
	}

	if err := fs.DeletePost(as(reader), post.ID); !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("foreign post delete: want unauthorized, got %v", err)
	}
	if err := fs.DeletePost(as(author), post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := fs.GetPost(as(author), post.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("deleted post: want not_found, got %v", err)
	}
	comments, _ := fs.ListComments(as(author), post.ID)
	if len(comments) != 0 {
		t.Fatalf("comments should be removed with the post, got %d", len(comments))
	}
}
