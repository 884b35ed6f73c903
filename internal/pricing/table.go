package pricing

// Default is the gateway's price list. Static base prices and the
// metadata-driven video tables are declarative data so that a new feature
// or price change is a one-line diff.
var Default = Table{
	"translate_text": {Base: 10, HasBase: true},
	"gemini_chat":    {Base: 5, HasBase: true},
	"voice_tts":      {Base: 2, HasBase: true},
	"heygen_video":   {Base: 200, HasBase: true},
	"photo_avatar":   {Base: 50, HasBase: true},
	"seedream_image": {Base: 40, HasBase: true},
	"test_feature":   {Base: 10, HasBase: true},

	// Kling text-to-video prices by clip length; the base covers requests
	// whose metadata carries no usable duration.
	"kling_video": {
		Base:    250,
		HasBase: true,
		ByDuration: map[int64]int64{
			5:  200,
			10: 500,
		},
	},
	"kling_v21_t2v": {Base: 300, HasBase: true},
	"kling_v25_t2v": {
		ByAspectDuration: map[AspectDuration]int64{
			{Aspect: "16:9", Duration: 5}:  300,
			{Aspect: "9:16", Duration: 5}:  300,
			{Aspect: "1:1", Duration: 5}:   300,
			{Aspect: "16:9", Duration: 10}: 600,
			{Aspect: "9:16", Duration: 10}: 600,
			{Aspect: "1:1", Duration: 10}:  600,
		},
	},
}
