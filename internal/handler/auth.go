package handler

import "net/http"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// IssueToken 不校验任何凭据，系统中只有一个固定的主体
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.tokens.Issue()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, tokenResponse{AccessToken: accessToken})
}
