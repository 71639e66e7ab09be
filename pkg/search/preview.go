package search

import "github.com/matzehuels/gitstat/pkg/integrations/github"

// Preview is the summary of a matched account shown in the result list.
type Preview struct {
	ID         int64  `json:"id"`
	Login      string `json:"login"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url"`
	ProfileURL string `json:"profile_url"`
}

// Project maps a search response to previews in the API's ranking order.
// At most limit previews are returned; limit <= 0 keeps them all. A nil or
// empty response yields an empty, non-nil slice.
func Project(resp *github.SearchResponse, limit int) []Preview {
	if resp == nil || len(resp.Items) == 0 {
		return []Preview{}
	}
	items := resp.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]Preview, len(items))
	for i, it := range items {
		out[i] = Preview{
			ID:         it.ID,
			Login:      it.Login,
			Name:       it.Name,
			AvatarURL:  it.AvatarURL,
			ProfileURL: it.HTMLURL,
		}
	}
	return out
}
