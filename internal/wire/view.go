package wire

// LocalPlayerState is the per-recipient projection of one side's player
// state: the recipient's own hand is fully visible, the opponent's hand
// is an empty list, deck contents are never visible beyond their top
// marker and size, discard is public to both sides, and timeline/row
// cards are public except that a face-down card's name is Hidden.
type LocalPlayerState struct {
	Hand          []LocalCard
	MainDeckSize  int
	MainTop       *DeckTop
	BloodDeckSize int
	BloodTop      *DeckTop
	Blood         int64
	Discard       []LocalCard
	Timeline      []LocalCard
	Row           Row[LocalCard]
}

// LocalState is the full view a room sends to one participant: the
// canonical game state with everything that participant is not entitled
// to see replaced by Hidden markers or DeckTop stand-ins.
type LocalState struct {
	Home       LocalPlayerState
	Away       LocalPlayerState
	Health     int64
	Spectators []ParticipantID
	AuthorSide *Side
}
