package service

import (
	"context"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/resolver"
)

// Operations is the typed table of every resolver the gateway exposes.
// Transports call the fields directly; the name-based registry built by
// Registry serves generic dispatch.
type Operations struct {
	Signup         *resolver.Op[ports.SignupInput, *domain.User]
	Login          *resolver.Op[ports.LoginInput, *ports.LoginResult]
	Me             *resolver.Op[ports.MeInput, *domain.User]
	ChangePassword *resolver.Op[ports.ChangePasswordInput, *domain.User]

	ListPosts  *resolver.Op[ports.ListPostsInput, *ports.PostPage]
	GetPost    *resolver.Op[ports.GetPostInput, *ports.PostView]
	CreatePost *resolver.Op[ports.CreatePostInput, *ports.PostView]
	UpdatePost *resolver.Op[ports.UpdatePostInput, *ports.PostView]
	DeletePost *resolver.Op[ports.DeletePostInput, *ports.DeletedPost]
}

func NewOperations(auth *AuthService, feed *FeedService) *Operations {
	return &Operations{
		Signup: &resolver.Op[ports.SignupInput, *domain.User]{
			Name: "signup", Kind: resolver.Mutation, Policy: resolver.Public,
			Handle: auth.Signup,
		},
		Login: &resolver.Op[ports.LoginInput, *ports.LoginResult]{
			Name: "login", Kind: resolver.Mutation, Policy: resolver.Public,
			Handle: auth.Login,
		},
		Me: &resolver.Op[ports.MeInput, *domain.User]{
			Name: "me", Kind: resolver.Query, Policy: resolver.Authenticated,
			Handle: auth.Me,
		},
		ChangePassword: &resolver.Op[ports.ChangePasswordInput, *domain.User]{
			Name: "changePassword", Kind: resolver.Mutation, Policy: resolver.Authenticated,
			Handle: auth.ChangePassword,
		},
		ListPosts: &resolver.Op[ports.ListPostsInput, *ports.PostPage]{
			Name: "posts", Kind: resolver.Query, Policy: resolver.Authenticated,
			Handle: feed.ListPosts,
		},
		GetPost: &resolver.Op[ports.GetPostInput, *ports.PostView]{
			Name: "post", Kind: resolver.Query, Policy: resolver.Authenticated,
			Handle: feed.GetPost,
		},
		CreatePost: &resolver.Op[ports.CreatePostInput, *ports.PostView]{
			Name: "createPost", Kind: resolver.Mutation, Policy: resolver.Authenticated,
			Handle: feed.CreatePost,
		},
		UpdatePost: &resolver.Op[ports.UpdatePostInput, *ports.PostView]{
			Name: "updatePost", Kind: resolver.Mutation, Policy: resolver.Owner,
			Owner: func(ctx context.Context, in ports.UpdatePostInput) (string, error) {
				return feed.PostOwner(ctx, in.ID)
			},
			Handle: feed.UpdatePost,
		},
		DeletePost: &resolver.Op[ports.DeletePostInput, *ports.DeletedPost]{
			Name: "deletePost", Kind: resolver.Mutation, Policy: resolver.Owner,
			Owner: func(ctx context.Context, in ports.DeletePostInput) (string, error) {
				return feed.PostOwner(ctx, in.ID)
			},
			Handle: feed.DeletePost,
		},
	}
}

// Registry registers every operation, running the registry's validation pass.
func (o *Operations) Registry() (*resolver.Registry, error) {
	r := resolver.NewRegistry()
	err := r.Register(
		o.Signup, o.Login, o.Me, o.ChangePassword,
		o.ListPosts, o.GetPost, o.CreatePost, o.UpdatePost, o.DeletePost,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
