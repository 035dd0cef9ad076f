package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

// ProfileResolver ищет профиль через REST API управляемого бэкенда (PostgREST)
type ProfileResolver struct {
	httpClient *resty.Client
}

func NewProfileResolver(baseURL, apiKey string, timeout time.Duration) *ProfileResolver {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("apikey", apiKey).
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &ProfileResolver{httpClient: client}
}

func (r *ProfileResolver) Resolve(ctx context.Context, email string) (*models.Profile, error) {
	var profiles []models.Profile

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "id,email,role,created_at",
			"email":  "eq." + strings.TrimSpace(email),
			"limit":  "1",
		}).
		SetResult(&profiles).
		Get("/rest/v1/profiles")
	if err != nil {
		return nil, errs.Wrap(errs.ErrTransient, err, "resolve profile")
	}

	switch {
	case resp.StatusCode() >= http.StatusInternalServerError:
		return nil, errs.Wrap(errs.ErrTransient, fmt.Errorf("status %d", resp.StatusCode()), "resolve profile")
	case resp.IsError():
		return nil, errs.Wrap(errs.ErrFatal, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()), "resolve profile")
	}

	if len(profiles) == 0 {
		return nil, errs.NotFound("profile %q not found", email)
	}

	return &profiles[0], nil
}
