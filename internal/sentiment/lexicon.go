package sentiment

// emojiSentiment maps emoji characters to sentiment scores in [-1, 1].
// Unknown emojis score 0.0; unknown reaction names default to the
// configured reaction sentiment instead (reactions skew positive).
var emojiSentiment = map[string]float64{
	"😊": 0.8, "😀": 0.8, "😃": 0.8, "😄": 0.8, "😁": 0.8,
	"😆": 0.7, "😂": 0.9, "🤣": 0.9, "😇": 0.6, "🙂": 0.5,
	"😉": 0.5, "😋": 0.6, "😎": 0.7, "🤗": 0.8, "🤩": 0.9,
	"😍": 0.9, "🥰": 0.9, "😘": 0.8, "😗": 0.6, "☺️": 0.6,
	"😌": 0.4, "😏": 0.3, "🤔": 0.1, "🙄": -0.3, "😒": -0.4,
	"😔": -0.6, "😞": -0.7, "😟": -0.6, "😢": -0.8, "😭": -0.9,
	"😤": -0.5, "😠": -0.7, "😡": -0.8, "🤬": -0.9, "😰": -0.6,
	"😨": -0.7, "😱": -0.8, "😪": -0.4, "🙃": 0.2, "😶": 0.0,
	"🤐": -0.1, "😐": 0.0, "😑": -0.1, "🤨": -0.2, "🧐": 0.1,
	"🤯": -0.3, "😵": -0.5, "🥴": -0.2, "🤮": -0.8, "🤢": -0.6,
	"🤧": -0.3, "😷": -0.2, "🤒": -0.4, "🤕": -0.5, "👍": 0.6,
	"👎": -0.6, "👏": 0.7, "🙌": 0.8, "👌": 0.5, "✨": 0.6,
	"🎉": 0.9, "🎊": 0.8, "💪": 0.7, "🔥": 0.8, "⭐": 0.6,
	"💯": 0.8, "✅": 0.6, "❌": -0.5, "⚠️": -0.3, "🚨": -0.6,
	"💔": -0.8, "❤️": 0.9, "💕": 0.8, "💖": 0.8, "💗": 0.8,
	"😴": -0.1, "💤": -0.1, "🤤": 0.1, "😻": 0.8, "💀": -0.7,
}

// reactionAliases maps common Slack reaction names to the emoji characters
// scored in emojiSentiment. Names not listed here fall back to the default
// reaction sentiment.
var reactionAliases = map[string]string{
	"thumbsup":                  "👍",
	"+1":                        "👍",
	"thumbsdown":                "👎",
	"-1":                        "👎",
	"clap":                      "👏",
	"raised_hands":              "🙌",
	"ok_hand":                   "👌",
	"sparkles":                  "✨",
	"tada":                      "🎉",
	"confetti_ball":             "🎊",
	"muscle":                    "💪",
	"fire":                      "🔥",
	"star":                      "⭐",
	"100":                       "💯",
	"white_check_mark":          "✅",
	"x":                         "❌",
	"warning":                   "⚠️",
	"rotating_light":            "🚨",
	"broken_heart":              "💔",
	"heart":                     "❤️",
	"two_hearts":                "💕",
	"joy":                       "😂",
	"rofl":                      "🤣",
	"smile":                     "😄",
	"grinning":                  "😀",
	"slightly_smiling_face":     "🙂",
	"wink":                      "😉",
	"sunglasses":                "😎",
	"hugging_face":              "🤗",
	"star-struck":               "🤩",
	"heart_eyes":                "😍",
	"thinking_face":             "🤔",
	"face_with_rolling_eyes":    "🙄",
	"unamused":                  "😒",
	"pensive":                   "😔",
	"disappointed":              "😞",
	"worried":                   "😟",
	"cry":                       "😢",
	"sob":                       "😭",
	"angry":                     "😠",
	"rage":                      "😡",
	"scream":                    "😱",
	"expressionless":            "😑",
	"neutral_face":              "😐",
	"exploding_head":            "🤯",
	"sleeping":                  "😴",
	"skull":                     "💀",
}

// positiveWords and negativeWords form the fallback text lexicon used when
// the primary scorer is unavailable
var positiveWords = map[string]float64{
	"great": 0.8, "awesome": 0.9, "excellent": 0.9, "good": 0.6,
	"nice": 0.5, "love": 0.8, "happy": 0.7, "thanks": 0.5,
	"thank": 0.5, "perfect": 0.9, "amazing": 0.9, "wonderful": 0.8,
	"fantastic": 0.9, "congrats": 0.8, "congratulations": 0.8,
	"win": 0.6, "won": 0.6, "success": 0.7, "shipped": 0.6,
	"done": 0.3, "fixed": 0.4, "solved": 0.5, "helpful": 0.6,
	"appreciate": 0.6, "excited": 0.7, "fun": 0.6, "cool": 0.5,
	"yay": 0.8, "woohoo": 0.9, "glad": 0.6, "better": 0.4,
}

var negativeWords = map[string]float64{
	"bad": -0.6, "terrible": -0.9, "awful": -0.9, "hate": -0.8,
	"angry": -0.7, "frustrated": -0.7, "frustrating": -0.7,
	"annoying": -0.6, "annoyed": -0.6, "broken": -0.5, "bug": -0.3,
	"fail": -0.6, "failed": -0.6, "failure": -0.7, "problem": -0.4,
	"problems": -0.4, "issue": -0.3, "issues": -0.3, "blocked": -0.5,
	"blocker": -0.5, "stuck": -0.5, "worried": -0.6, "worry": -0.5,
	"stress": -0.7, "stressed": -0.8, "stressful": -0.7,
	"overwhelmed": -0.8, "exhausted": -0.8, "tired": -0.5,
	"burnout": -0.9, "burned": -0.6, "deadline": -0.3, "late": -0.4,
	"delay": -0.4, "delayed": -0.4, "sorry": -0.3, "unfortunately": -0.4,
	"wrong": -0.5, "worse": -0.6, "worst": -0.8, "impossible": -0.6,
	"never": -0.3, "disaster": -0.9, "mess": -0.5, "pain": -0.6,
}
