package minigame

// headsupItems is the draw pool for Headsup. A game uses at most ten, so
// repeats within one instance are impossible.
var headsupItems = []string{
	"giraffe", "pizza", "astronaut", "volcano", "penguin", "guitar",
	"rainbow", "submarine", "cactus", "tornado", "mermaid", "robot",
	"pancake", "lighthouse", "dinosaur", "snowman", "jellyfish", "pirate",
	"waterfall", "unicorn", "skateboard", "campfire", "octopus", "wizard",
	"hamburger", "parachute", "flamingo", "telescope", "igloo", "ninja",
	"croissant", "helicopter", "scarecrow", "avalanche", "bumblebee",
	"trampoline", "porcupine", "lantern", "accordion", "marshmallow",
}

type triviaQuestion struct {
	Prompt  string
	Options []string
	Answer  int
}

var triviaQuestions = []triviaQuestion{
	{
		Prompt:  "Which planet has the most moons?",
		Options: []string{"Earth", "Mars", "Saturn", "Venus"},
		Answer:  2,
	},
	{
		Prompt:  "What is the largest ocean on Earth?",
		Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"},
		Answer:  3,
	},
	{
		Prompt:  "How many hearts does an octopus have?",
		Options: []string{"One", "Two", "Three", "Eight"},
		Answer:  2,
	},
	{
		Prompt:  "Which country invented pizza?",
		Options: []string{"France", "Italy", "Greece", "Spain"},
		Answer:  1,
	},
	{
		Prompt:  "What is the fastest land animal?",
		Options: []string{"Lion", "Cheetah", "Gazelle", "Horse"},
		Answer:  1,
	},
	{
		Prompt:  "Which element has the chemical symbol O?",
		Options: []string{"Gold", "Osmium", "Oxygen", "Oganesson"},
		Answer:  2,
	},
	{
		Prompt:  "In which year did humans first land on the Moon?",
		Options: []string{"1965", "1969", "1972", "1959"},
		Answer:  1,
	},
	{
		Prompt:  "What is the tallest mountain on Earth?",
		Options: []string{"K2", "Kilimanjaro", "Denali", "Everest"},
		Answer:  3,
	},
	{
		Prompt:  "How many strings does a standard violin have?",
		Options: []string{"Four", "Five", "Six", "Seven"},
		Answer:  0,
	},
	{
		Prompt:  "Which language has the most native speakers?",
		Options: []string{"English", "Hindi", "Mandarin Chinese", "Spanish"},
		Answer:  2,
	},
	{
		Prompt:  "What do pandas almost exclusively eat?",
		Options: []string{"Fish", "Bamboo", "Eucalyptus", "Insects"},
		Answer:  1,
	},
	{
		Prompt:  "Which artist painted the Starry Night?",
		Options: []string{"Monet", "Picasso", "Van Gogh", "Dali"},
		Answer:  2,
	},
	{
		Prompt:  "What is the smallest prime number?",
		Options: []string{"Zero", "One", "Two", "Three"},
		Answer:  2,
	},
	{
		Prompt:  "Which sea creature can regrow lost arms?",
		Options: []string{"Seahorse", "Starfish", "Clownfish", "Dolphin"},
		Answer:  1,
	},
	{
		Prompt:  "How many time zones does Russia span?",
		Options: []string{"Seven", "Nine", "Eleven", "Thirteen"},
		Answer:  2,
	},
}
