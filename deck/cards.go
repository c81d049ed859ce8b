package deck

// The built-in catalog. Compiled in so the game never waits on a fetch.

var builtinCards = []Card{
	{ID: "pineapple-pizza", Text: "Pineapple on pizza", Category: "food"},
	{ID: "cold-pizza", Text: "Cold pizza for breakfast", Category: "food"},
	{ID: "cilantro", Text: "Cilantro", Category: "food"},
	{ID: "black-coffee", Text: "Black coffee", Category: "food"},
	{ID: "oat-milk", Text: "Oat milk", Category: "food"},
	{ID: "well-done-steak", Text: "Well-done steak", Category: "food"},
	{ID: "candy-corn", Text: "Candy corn", Category: "food"},
	{ID: "blue-cheese", Text: "Blue cheese", Category: "food"},
	{ID: "pickles", Text: "Pickles", Category: "food"},
	{ID: "ketchup-eggs", Text: "Ketchup on eggs", Category: "food"},
	{ID: "licorice", Text: "Black licorice", Category: "food"},
	{ID: "raisin-cookies", Text: "Raisins in cookies", Category: "food"},
	{ID: "monday-mornings", Text: "Monday mornings", Category: "life"},
	{ID: "small-talk", Text: "Small talk with strangers", Category: "life"},
	{ID: "group-projects", Text: "Group projects", Category: "life"},
	{ID: "voicemails", Text: "Leaving voicemails", Category: "life"},
	{ID: "surprise-parties", Text: "Surprise parties", Category: "life"},
	{ID: "karaoke", Text: "Karaoke night", Category: "life"},
	{ID: "camping", Text: "Camping", Category: "life"},
	{ID: "early-flights", Text: "Early morning flights", Category: "life"},
	{ID: "public-speaking", Text: "Public speaking", Category: "life"},
	{ID: "board-games", Text: "Board game night", Category: "life"},
	{ID: "long-car-rides", Text: "Long car rides", Category: "life"},
	{ID: "rainy-days", Text: "Rainy days", Category: "life"},
	{ID: "musicals", Text: "Musicals", Category: "entertainment"},
	{ID: "reality-tv", Text: "Reality TV", Category: "entertainment"},
	{ID: "horror-movies", Text: "Horror movies", Category: "entertainment"},
	{ID: "spoilers", Text: "Movie spoilers", Category: "entertainment"},
	{ID: "laugh-tracks", Text: "Sitcom laugh tracks", Category: "entertainment"},
	{ID: "cliffhangers", Text: "Season-ending cliffhangers", Category: "entertainment"},
	{ID: "subtitles", Text: "Watching with subtitles", Category: "entertainment"},
	{ID: "sequels", Text: "Movie sequels", Category: "entertainment"},
	{ID: "podcasts", Text: "True crime podcasts", Category: "entertainment"},
	{ID: "live-concerts", Text: "Live concerts", Category: "entertainment"},
	{ID: "slow-walkers", Text: "Slow walkers on sidewalks", Category: "peeves"},
	{ID: "loud-chewing", Text: "Loud chewing", Category: "peeves"},
	{ID: "reply-all", Text: "Reply-all email threads", Category: "peeves"},
	{ID: "autoplay-videos", Text: "Autoplaying videos", Category: "peeves"},
	{ID: "tangled-cables", Text: "Tangled cables", Category: "peeves"},
	{ID: "phone-speaker", Text: "Phone calls on speaker in public", Category: "peeves"},
	{ID: "meeting-couldve-been-email", Text: "Meetings that could have been emails", Category: "peeves"},
	{ID: "socks-sandals", Text: "Socks with sandals", Category: "style"},
	{ID: "double-denim", Text: "Double denim", Category: "style"},
	{ID: "crocs", Text: "Crocs", Category: "style"},
	{ID: "bucket-hats", Text: "Bucket hats", Category: "style"},
	{ID: "fanny-packs", Text: "Fanny packs", Category: "style"},
	{ID: "winter", Text: "Winter", Category: "seasons"},
	{ID: "summer-heat", Text: "Peak summer heat", Category: "seasons"},
	{ID: "autumn-leaves", Text: "Autumn leaves", Category: "seasons"},
	{ID: "spring-cleaning", Text: "Spring cleaning", Category: "seasons"},
}
