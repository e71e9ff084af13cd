package attendance

import (
	"crypto/rand"
	"math/big"
)

// reward bounds, inclusive
const (
	MinReward = 1
	MaxReward = 10
)

// RewardFunc draws the reward of a check-in.
type RewardFunc func() (int, error)

// RandomReward draws a reward uniformly from [MinReward, MaxReward].
func RandomReward() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxReward-MinReward+1))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + MinReward, nil
}
