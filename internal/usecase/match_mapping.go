package usecase

import (
	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/shopspring/decimal"
)

// MatchRecord is the outward shape of a stored match.
type MatchRecord struct {
	MatchID     int64        `json:"matchId"`
	MatchOwner  string       `json:"matchOwner"`
	Description string       `json:"description"`
	MatchDate   string       `json:"matchDate"`
	MatchTime   string       `json:"matchTime"`
	TeamA       string       `json:"teamA"`
	TeamB       string       `json:"teamB"`
	Sport       match.Sport  `json:"sport"`
	Odds        []OddsRecord `json:"odds"`
}

type OddsRecord struct {
	Specifier match.Specifier `json:"specifier"`
	Odd       decimal.Decimal `json:"odd"`
}

// MatchPage is one page of records plus paging metadata.
type MatchPage struct {
	Content          []MatchRecord `json:"content"`
	TotalElements    int64         `json:"totalElements"`
	TotalPages       int           `json:"totalPages"`
	Size             int           `json:"size"`
	Number           int           `json:"number"`
	NumberOfElements int           `json:"numberOfElements"`
	First            bool          `json:"first"`
	Last             bool          `json:"last"`
	Empty            bool          `json:"empty"`
}

// ToMatchRecord keeps odds in stored order.
func ToMatchRecord(m match.Match) MatchRecord {
	odds := make([]OddsRecord, 0, len(m.Odds))
	for _, o := range m.Odds {
		odds = append(odds, OddsRecord{
			Specifier: o.Specifier,
			Odd:       o.Odd,
		})
	}

	return MatchRecord{
		MatchID:     m.ID,
		MatchOwner:  m.Owner,
		Description: m.Description,
		MatchDate:   match.FormatDate(m.MatchDate),
		MatchTime:   match.FormatTime(m.MatchTime),
		TeamA:       m.TeamA,
		TeamB:       m.TeamB,
		Sport:       m.Sport,
		Odds:        odds,
	}
}

func toMatchPage(page match.Page, req match.PageRequest) MatchPage {
	content := make([]MatchRecord, 0, len(page.Items))
	for _, item := range page.Items {
		content = append(content, ToMatchRecord(item))
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((page.Total + int64(req.Size) - 1) / int64(req.Size))
	}

	return MatchPage{
		Content:          content,
		TotalElements:    page.Total,
		TotalPages:       totalPages,
		Size:             req.Size,
		Number:           req.Page,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}
