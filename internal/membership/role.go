package membership

import (
	"github.com/alecgard/clubhive/internal/apperr"
)

// Tier is the coarse capability level of a membership within one club.
type Tier string

const (
	TierMember Tier = "member"
	TierBoard  Tier = "board"
)

// Title is the display label of a membership.
type Title string

const (
	TitleMember            Title = "Member"
	TitlePresident         Title = "President"
	TitleVicePresident     Title = "Vice President"
	TitleGeneralSecretary  Title = "General Secretary"
	TitleTreasurer         Title = "Treasurer"
	TitleHRHead            Title = "HR Head"
	TitlePRHead            Title = "PR Head"
	TitleManagingCommittee Title = "Managing Committee"
	TitleWorkingCommittee  Title = "Working Committee"
	TitleVolunteer         Title = "Volunteer"
	TitleOther             Title = "Other"
)

// titlesByTier is the closed table of titles each tier may carry.
var titlesByTier = map[Tier]map[Title]bool{
	TierBoard: {
		TitlePresident:         true,
		TitleVicePresident:     true,
		TitleGeneralSecretary:  true,
		TitleTreasurer:         true,
		TitleHRHead:            true,
		TitlePRHead:            true,
		TitleManagingCommittee: true,
		TitleWorkingCommittee:  true,
		TitleOther:             true,
	},
	TierMember: {
		TitleMember:            true,
		TitleManagingCommittee: true,
		TitleWorkingCommittee:  true,
		TitleVolunteer:         true,
		TitleOther:             true,
	},
}

var leadershipTitles = map[Title]bool{
	TitlePresident:        true,
	TitleVicePresident:    true,
	TitleGeneralSecretary: true,
	TitleTreasurer:        true,
	TitleHRHead:           true,
	TitlePRHead:           true,
}

var (
	ErrInvalidTier     = apperr.Invalid(`invalid role, must be "member" or "board"`)
	ErrInvalidTitle    = apperr.Invalid("invalid roleName")
	ErrBoardTitle      = apperr.Invalid("board type cannot have Member or Volunteer role name")
	ErrLeadershipTitle = apperr.Invalid("member type cannot have leadership role names")
)

// Role couples a tier with a title that is valid for it. The zero Role is
// not valid; build one with NewRole.
type Role struct {
	tier  Tier
	title Title
}

// NewRole validates title against tier.
func NewRole(tier Tier, title Title) (Role, error) {
	allowed, ok := titlesByTier[tier]
	if !ok {
		return Role{}, ErrInvalidTier
	}
	if allowed[title] {
		return Role{tier: tier, title: title}, nil
	}
	switch {
	case tier == TierBoard && titlesByTier[TierMember][title]:
		return Role{}, ErrBoardTitle
	case tier == TierMember && leadershipTitles[title]:
		return Role{}, ErrLeadershipTitle
	}
	return Role{}, ErrInvalidTitle
}

// DefaultRole is the role of a fresh join request.
func DefaultRole() Role {
	return Role{tier: TierMember, title: TitleMember}
}

// DefaultTitle is the title given when a tier is assigned without one.
func DefaultTitle(tier Tier) Title {
	if tier == TierBoard {
		return TitleOther
	}
	return TitleMember
}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := titlesByTier[t]; !ok {
		return "", ErrInvalidTier
	}
	return t, nil
}

func (r Role) Tier() Tier { return r.tier }
func (r Role) Title() Title { return r.title }

// IsBoard reports whether the role carries management rights for its club.
func (r Role) IsBoard() bool { return r.tier == TierBoard }

// WithTier moves r to tier. The title is kept when still valid, otherwise the
// tier default is used.
func (r Role) WithTier(tier Tier) (Role, error) {
	if _, err := ParseTier(string(tier)); err != nil {
		return Role{}, err
	}
	if titlesByTier[tier][r.title] {
		return Role{tier: tier, title: r.title}, nil
	}
	return Role{tier: tier, title: DefaultTitle(tier)}, nil
}
