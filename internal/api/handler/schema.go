package handler

// --- Request / Response types ---

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// postRequest is accepted as JSON or as multipart/form-data with an optional
// "image" file part, which takes precedence over imageUrl.
type postRequest struct {
	Title    string `json:"title"    form:"title"`
	Content  string `json:"content"  form:"content"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
}

type operationResponse struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Policy string `json:"policy"`
}

type operationResultResponse struct {
	Data any `json:"data"`
}
