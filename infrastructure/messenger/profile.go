package messenger

import (
	"context"
	"fmt"
	"net/url"

	"github.com/valyala/fasthttp"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

const profileFields = "first_name,last_name,profile_pic,locale,timezone,gender"

type profileResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic"`
	Locale     string `json:"locale"`
	Timezone   int    `json:"timezone"`
	Gender     string `json:"gender"`
}

// FetchProfile implements domain.ProfileFetcher. A profile without a first
// name counts as a failed lookup.
func (c *Client) FetchProfile(ctx context.Context, participantID string) (*domain.UserProfile, error) {
	var resp profileResponse
	uri := c.endpoint(url.PathEscape(participantID), url.Values{"fields": {profileFields}})
	if err := c.do(ctx, fasthttp.MethodGet, uri, nil, &resp); err != nil {
		return nil, pkgError.UpstreamError(fmt.Sprintf("profile lookup for %s failed: %v", participantID, err))
	}
	if resp.FirstName == "" {
		return nil, pkgError.UpstreamError(fmt.Sprintf("cannot get data for user %s", participantID))
	}
	return &domain.UserProfile{
		ParticipantID:     participantID,
		FirstName:         resp.FirstName,
		LastName:          resp.LastName,
		ProfilePictureURL: resp.ProfilePic,
		Locale:            resp.Locale,
		Timezone:          resp.Timezone,
		Gender:            resp.Gender,
	}, nil
}
