package game

import "math/rand"

// Source supplies one secret word per round.
type Source interface {
	Draw() string
}

// WordList draws uniformly at random from a fixed vocabulary. Previously
// drawn words are not excluded, so repeats across rounds are possible.
type WordList []string

// Draw returns a random word from the list.
func (w WordList) Draw() string {
	return w[rand.Intn(len(w))]
}

// DefaultWords is the built-in vocabulary used when no other source is wired.
var DefaultWords = WordList{
	"airport", "astronaut", "avalanche", "bakery", "beehive", "bicycle",
	"birthday", "blanket", "bonfire", "bowling", "butterfly", "cactus",
	"carnival", "castle", "cathedral", "circus", "compass", "desert",
	"dinosaur", "dragon", "elevator", "firefighter", "fireworks", "fountain",
	"galaxy", "glacier", "hammock", "harbor", "haunted house", "helicopter",
	"honeymoon", "iceberg", "igloo", "island", "jungle", "karaoke",
	"lighthouse", "lightning", "magician", "mermaid", "microscope", "moon",
	"museum", "ninja", "orchestra", "parachute", "pirate", "pyramid",
	"rainbow", "robot", "rollercoaster", "sandcastle", "scarecrow",
	"skyscraper", "snowman", "submarine", "telescope", "thunderstorm",
	"treasure", "vampire", "volcano", "waterfall", "windmill", "zoo",
}
