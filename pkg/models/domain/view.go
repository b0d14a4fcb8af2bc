package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownView = errors.New("unknown view")

type View string

const (
	ViewOverview       View = "overview"
	ViewHourly         View = "hourly"
	ViewProductRanking View = "product-ranking"
	ViewDemographics   View = "demographics"
	ViewCooccurrence   View = "co-occurrence"
)

var Views = []View{
	ViewOverview,
	ViewHourly,
	ViewProductRanking,
	ViewDemographics,
	ViewCooccurrence,
}

func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

type ViewRequest struct {
	View View
	// Item is the target item of the co-occurrence view.
	Item string
}

// ViewResult carries the tables of a single view; tables of other views stay nil.
type ViewResult struct {
	View View

	Overview *Overview
	Preview  []DerivedItem

	Hourly []HourlyStat

	TopBySales    []ProductRank
	TopByQuantity []ProductRank
	Categories    []CategoryShare

	Gender              []DemographicStat
	Age                 []DemographicStat
	GenderTopCategories []CategoryRank
	AgeTopCategories    []CategoryRank

	Cooccurrence *Cooccurrence

	Notes []string
}
