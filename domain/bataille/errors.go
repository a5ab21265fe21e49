package bataille

import "errors"

var (
	ErrNoSuchGame         = errors.New("no such game")
	ErrGameAlreadyStarted = errors.New("game started")
	ErrGameNotStarted     = errors.New("game not started")
	ErrOutOfTurn          = errors.New("out of turn")
	ErrVerificationFailed = errors.New("drand verification failed")
	// ErrHeapExhausted means the current player has nothing to draw. The
	// elimination rules make it unreachable; seeing it points at corrupted state.
	ErrHeapExhausted = errors.New("heap exhausted")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNoSuchGame, "no_such_game"},
	{ErrGameAlreadyStarted, "game_already_started"},
	{ErrGameNotStarted, "game_not_started"},
	{ErrOutOfTurn, "out_of_turn"},
	{ErrVerificationFailed, "verification_failed"},
	{ErrHeapExhausted, "heap_exhausted"},
}

// Code returns the stable reason code of err, or "internal" for errors
// outside the game taxonomy.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
