package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/domain/user"
	"github.com/yungbote/practice-backend/internal/http/response"
)

// uuidParam parses a path parameter, writing a 400 and returning false when malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body, writing a 400 and returning false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return b
}

// PublicUser is the profile shown to other users; it omits the email.
type PublicUser struct {
	ID                uuid.UUID      `json:"id"`
	DisplayName       string         `json:"display_name"`
	PhotoURL          string         `json:"photo_url,omitempty"`
	Region            string         `json:"region,omitempty"`
	Instruments       datatypes.JSON `json:"instruments,omitempty"`
	TotalPracticeTime int            `json:"total_practice_time"`
	MemberSince       time.Time      `json:"member_since"`
}

func publicUser(u *types.User) PublicUser {
	return PublicUser{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		PhotoURL:          u.PhotoURL,
		Region:            u.Region,
		Instruments:       user.EncodeInstruments(user.DecodeInstruments(u.Instruments)),
		TotalPracticeTime: u.TotalPracticeTime,
		MemberSince:       u.CreatedAt,
	}
}

func publicUsers(in []*types.User) []PublicUser {
	out := make([]PublicUser, 0, len(in))
	for _, u := range in {
		if u != nil {
			out = append(out, publicUser(u))
		}
	}
	return out
}
