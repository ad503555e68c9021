package seasonstats

import "context"

// Source labels where a season summary came from.
type Source string

const (
	SourceRemote       Source = "remote"
	SourceLocalRecords Source = "local_records"
)

type Player struct {
	ID   int64
	Name string
	Team string
}

// Summary is one player's season line. Totals are nil when the source does not carry them.
type Summary struct {
	Player        Player
	Season        string
	Source        Source
	GamesPlayed   int
	Goals         *int
	Shots         *int
	Assists       *int
	AvgTOI        string
	AvgTOIMinutes *float64
	ShotsPerGame  *float64
	GoalsPerGame  *float64
}

// Provider is the remote stats API. found=false means the remote answered but had no match.
type Provider interface {
	SearchPlayer(ctx context.Context, name string) (player Player, found bool, err error)
	FetchSeasonStats(ctx context.Context, playerID int64, season string) (summary Summary, found bool, err error)
}
