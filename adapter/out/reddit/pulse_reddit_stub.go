package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/core/service/normalize"
)

const NameStub = "stub"

// StubSource synthesizes sample threads so an otherwise valid query always
// has content to show. The tables are placeholder data keyed by a coarse
// topic match on the keyword.
type StubSource struct{}

var (
	_ out.ContentSource   = StubSource{}
	_ out.SyntheticSource = StubSource{}
)

func NewStubSource() StubSource { return StubSource{} }

func (StubSource) Name() string { return NameStub }

func (StubSource) Synthetic() bool { return true }

func (StubSource) SearchByKeyword(_ context.Context, keyword string, limit int, _ domain.RecencyMode) ([]*domain.Post, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []*domain.Post{}, nil
	}

	raws := genericStub(keyword)
	if strings.Contains(strings.ToLower(keyword), "crm") {
		raws = crmStub(keyword)
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	return normalize.NormalizeAll(raws, domain.SearchCommentCap), nil
}

// FetchByID is unsupported: stub threads have no stable id.
func (StubSource) FetchByID(context.Context, string) (*domain.Post, error) {
	return nil, domain.ErrFetchUnsupported
}

func searchPath(subreddit, keyword string) string {
	return fmt.Sprintf("/r/%s/search?q=%s&restrict_sr=1", subreddit, url.QueryEscape(keyword))
}

func crmStub(keyword string) []domain.StubPost {
	return []domain.StubPost{
		{
			Title:     "What CRM are you using for your real estate business in 2024?",
			Author:    "realtor_jenny",
			Subreddit: "realestate",
			Path:      searchPath("realestate", keyword),
			Score:     247,
			Comments: []domain.StubComment{
				{Author: "broker_mike", Body: "Follow Up Boss has been solid for our team. The automatic lead routing alone saved us hours every week."},
				{Author: "first_year_agent", Body: "I started with a spreadsheet and regret not switching sooner. Any CRM with text reminders beats nothing."},
				{Author: "team_lead_sarah", Body: "kvCORE if your brokerage pays for it, otherwise look at Wise Agent. Both integrate with most lead sources."},
			},
		},
		{
			Title:     "Follow Up Boss vs kvCORE: honest comparison after two years",
			Author:    "data_driven_realtor",
			Subreddit: "realtors",
			Path:      searchPath("realtors", keyword),
			Score:     156,
			Comments: []domain.StubComment{
				{Author: "closer_dan", Body: "FUB wins on usability, kvCORE wins on the IDX website. Depends what you need more."},
				{Author: "", Body: "The kvCORE mobile app was painful last time I tried it."},
			},
		},
		{
			Title:     "Best free CRM for a brand new agent?",
			Author:    "newagent2024",
			Subreddit: "RealEstateTechnology",
			Path:      searchPath("RealEstateTechnology", keyword),
			Score:     89,
			Comments: []domain.StubComment{
				{Author: "proptech_pete", Body: "HubSpot free tier is more than enough until you have a real pipeline."},
				{Author: "agent_amy", Body: "Check whether your brokerage already provides one before paying for anything."},
			},
		},
	}
}

func genericStub(keyword string) []domain.StubPost {
	return []domain.StubPost{
		{
			Title:     fmt.Sprintf("What's your honest experience with %s?", keyword),
			Author:    "curious_redditor",
			Subreddit: "AskReddit",
			Path:      searchPath("AskReddit", keyword),
			Score:     120,
			Comments: []domain.StubComment{
				{Author: "long_time_user", Body: fmt.Sprintf("I've used %s for a while now. It does the basics well but took some time to learn.", keyword)},
				{Author: "skeptic42", Body: "Mixed feelings. Worth trying, but read the fine print first."},
			},
		},
		{
			Title:     fmt.Sprintf("Best alternatives to %s?", keyword),
			Author:    "options_hunter",
			Subreddit: "productivity",
			Path:      searchPath("productivity", keyword),
			Score:     85,
			Comments: []domain.StubComment{
				{Author: "tool_collector", Body: "It depends on what you need most. List your must-haves and compare from there."},
			},
		},
		{
			Title:     fmt.Sprintf("Is %s worth it in 2024?", keyword),
			Author:    "budget_conscious",
			Subreddit: "technology",
			Path:      searchPath("technology", keyword),
			Score:     42,
			Comments: []domain.StubComment{
				{Author: "early_adopter", Body: "For me yes, but only after the recent updates."},
			},
		},
	}
}
