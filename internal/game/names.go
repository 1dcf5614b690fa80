package game

var hippoNames = []string{
	"Hiphopopotamus",
	"Rhymenocerous",
	"Steve",
	"Peter Potamus",
	"Mr. Wiggles",
	"Mr. Bubbles",
	"Sergeant Snout",
	"General Hipper",
	"Harry Pottamus",
	"Hippopuff",
	"Hippoclaw",
	"Marie Hippolonium",
	"Darth Potamus",
	"Hippo the Hutt",
	"Zippo",
	"Tortilla Chippo",
	"Hippolyta",
	"Wonder Potamus",
	"Bat-hippo",
	"H-1PO",
	"Breath of the Hippo",
	"Raging Hippo",
	"Hippo the Grey",
	"The One Hippo",
	"Samwise Hippo",
	"Hippo Skywalker",
	"Obi-Wan Potamus",
	"R2-HIPPO",
	"Hippo Solo",
	"Captain Amerihippo",
	"River Horse",
	"Phantom Hippo",
	"Chekhov's Hippo",
	"El Hipperino",
	"Space Pirate Ninja Hippo",
	"Hippocrates",
	"Hippodrome",
	"Hippo-Packard",
	"Hippasaurus Rex",
	"Hippius Maximus",
	"Chi-town Potamus",
	"Marble Muncher",
	"Sir Chomps-a-Lot",
	"Big Gulp",
	"Gobbles McGee",
	"The Bottomless Pit",
}

func randomName(rng RandomSource) string {
	return hippoNames[rng.IntN(len(hippoNames))]
}
