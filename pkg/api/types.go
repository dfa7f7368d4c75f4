package api

import "time"

// Auth types
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// AuthUser is the identity record returned by the auth endpoint
type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a row of the profiles table
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the username
func (p *Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// Post is a row of the posts table. Replies carry a ParentID.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	CategoryID *string   `json:"category_id,omitempty"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Author     *Profile  `json:"author,omitempty"`
}

// IsTopLevel reports whether the post is not a reply
func (p Post) IsTopLevel() bool {
	return p.ParentID == nil || *p.ParentID == ""
}

// FollowEdge is a row of the follows table
type FollowEdge struct {
	FollowerID  string     `json:"follower_id"`
	FollowingID string     `json:"following_id"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Category groups posts by topic
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ErrorResponse is the error body returned by the REST and auth endpoints
type ErrorResponse struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	Details          string `json:"details,omitempty"`
	Hint             string `json:"hint,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Msg              string `json:"msg,omitempty"`
}
