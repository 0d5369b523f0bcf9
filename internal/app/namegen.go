package app

import "math/rand"

var nameAdjectives = []string{
	"Brave", "Calm", "Clever", "Eager", "Gentle", "Happy", "Jolly",
	"Lucky", "Mellow", "Nimble", "Proud", "Quick", "Quiet", "Silly",
	"Sly", "Snappy", "Sunny", "Swift", "Witty", "Zesty",
}

var nameAnimals = []string{
	"Badger", "Bear", "Crane", "Dolphin", "Falcon", "Fox", "Heron",
	"Lynx", "Marmot", "Otter", "Owl", "Panda", "Rabbit", "Raven",
	"Seal", "Sparrow", "Tiger", "Walrus", "Wolf", "Wombat",
}

// randomDisplayName builds a human-friendly default identity for clients
// that never supplied a name, e.g. "Quiet Otter".
func randomDisplayName() string {
	adj := nameAdjectives[rand.Intn(len(nameAdjectives))]
	animal := nameAnimals[rand.Intn(len(nameAnimals))]
	return adj + " " + animal
}
