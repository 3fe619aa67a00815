package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashToastCookieName = "uac_toast"

// Toast is a one-shot notice shown on the next rendered page.
type Toast struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func setFlashToast(c *gin.Context, toast Toast) {
	toast.Category = normalizeToastCategory(toast.Category)
	toast.Title = strings.TrimSpace(toast.Title)
	toast.Description = strings.TrimSpace(toast.Description)
	if toast.Title == "" && toast.Description == "" {
		return
	}

	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashToastCookieName, base64.RawURLEncoding.EncodeToString(payload), 30, "/", "", false, true)
}

func popFlashToast(c *gin.Context) *Toast {
	value, err := c.Cookie(flashToastCookieName)
	if err != nil || value == "" {
		return nil
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashToastCookieName, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	var toast Toast
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}

	toast.Category = normalizeToastCategory(toast.Category)
	if strings.TrimSpace(toast.Title) == "" && strings.TrimSpace(toast.Description) == "" {
		return nil
	}
	return &toast
}

func normalizeToastCategory(category string) string {
	switch c := strings.ToLower(strings.TrimSpace(category)); c {
	case "success", "error", "warning", "info":
		return c
	default:
		return "info"
	}
}
