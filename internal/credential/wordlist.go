package credential

// wordlist feeds GeneratePassphrase. Short concrete nouns only, no
// homophones, all lowercase ASCII.
var wordlist = []string{
	"acorn", "amber", "anchor", "apple", "arrow", "atlas", "badge", "bagel",
	"bamboo", "barrel", "basket", "beacon", "berry", "bison", "blanket",
	"bottle", "breeze", "brick", "bridge", "bucket", "button", "cabin",
	"cactus", "camera", "candle", "canoe", "canyon", "carpet", "castle",
	"cattle", "cedar", "cellar", "cherry", "circle", "cliff", "clover",
	"cobalt", "comet", "copper", "coral", "cotton", "crater", "cricket",
	"crystal", "daisy", "dagger", "dolphin", "donkey", "eagle", "ember",
	"engine", "falcon", "feather", "fiddle", "flint", "forest", "fossil",
	"garden", "garlic", "glacier", "goblet", "granite", "grape", "hammer",
	"harbor", "hazel", "helmet", "hornet", "island", "ivory", "jacket",
	"jungle", "kettle", "lantern", "lemon", "lobster", "locket", "magnet",
	"mango", "maple", "marble", "meadow", "mirror", "monkey", "mountain",
	"needle", "nickel", "ocean", "olive", "onion", "orbit", "otter",
	"paddle", "panda", "pebble", "pencil", "pepper", "pigeon", "pillow",
	"planet", "plum", "pocket", "pony", "prairie", "pumpkin", "quartz",
	"rabbit", "raven", "ribbon", "river", "rocket", "saddle", "salmon",
	"sandal", "shovel", "silver", "sparrow", "spider", "spruce", "squash",
	"stable", "summit", "sunset", "thimble", "thunder", "ticket", "tiger",
	"timber", "tunnel", "turtle", "valley", "velvet", "violet", "wagon",
	"walnut", "walrus", "willow", "window", "winter", "zebra",
}
