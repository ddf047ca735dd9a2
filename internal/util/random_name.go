package util

import (
	"fmt"

	"leviathan-server/internal/rng"
)

var adjectives = []string{
	"Fast", "Slow", "Quick", "Speedy", "Drifting", "Weaving", "Gracious", "Healthy", "Happy", "Funny",
	"Red", "Blue", "Green", "Orange", "Purple", "Fuzzy", "Smiling", "Grand", "Ultimate", "Prime",
	"Alpha", "Growling", "Gliding", "Swimming", "Diving", "Jumping", "Charging", "Bouncing", "Leaping",
}

var creatures = []string{
	"Shark", "Otter", "Dolphin", "Whale", "Kraken", "Squid", "Octopus", "Manatee", "Narwhal", "Orca",
	"Seal", "Walrus", "Eel", "Marlin", "Barracuda", "Turtle", "Crab", "Lobster", "Stingray", "Pelican",
}

var random rng.Generator = rng.Crypto{}

// GetRandomName returns a random display name by combining an adjective with a sea creature
// It is used when a player joins an instance without choosing a name
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	creaturesIndex := random.Intn(len(creatures))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], creatures[creaturesIndex])
}
