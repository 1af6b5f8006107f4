package handler

import (
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/resolver"
)

// --- Request → Operation input ---

func toSignupInput(req signupRequest) ports.SignupInput {
	return ports.SignupInput{Email: req.Email, Password: req.Password, Name: req.Name}
}

func toLoginInput(req loginRequest) ports.LoginInput {
	return ports.LoginInput{Email: req.Email, Password: req.Password}
}

func toChangePasswordInput(req changePasswordRequest) ports.ChangePasswordInput {
	return ports.ChangePasswordInput{CurrentPassword: req.CurrentPassword, NewPassword: req.NewPassword}
}

// toCreatePostInput prefers an uploaded image over a supplied imageUrl.
func toCreatePostInput(req postRequest, uploaded, idempotencyKey string) ports.CreatePostInput {
	in := ports.CreatePostInput{
		Title:          req.Title,
		Content:        req.Content,
		ImageURL:       req.ImageURL,
		IdempotencyKey: idempotencyKey,
	}
	if uploaded != "" {
		in.ImageURL = uploaded
	}
	return in
}

func toUpdatePostInput(id string, req postRequest, uploaded string) ports.UpdatePostInput {
	in := ports.UpdatePostInput{
		ID:       id,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if uploaded != "" {
		in.ImageURL = uploaded
	}
	return in
}

// --- Registry → Response ---

func toOperationResponses(ds []resolver.Descriptor) []operationResponse {
	out := make([]operationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, operationResponse{
			Name:   d.Name,
			Kind:   string(d.Kind),
			Policy: d.Policy.String(),
		})
	}
	return out
}
