package llm

// ImageStyle selects the prompt prefix prepended to generated scene prompts
type ImageStyle string

const (
	StyleGraphicNovel   ImageStyle = "graphic_novel"
	StyleRealisticAnime ImageStyle = "realistic_anime"
	StylePhotorealism   ImageStyle = "photorealism"
	StyleUserDefined    ImageStyle = "user_defined"
)

// StylePrompt returns the prompt prefix for a style. Fixed styles ignore
// customStyle; user_defined returns customStyle with a trailing comma-space
// or the empty string when no custom text is set. Unknown styles return "".
func StylePrompt(style ImageStyle, customStyle string) string {
	switch style {
	case StyleGraphicNovel:
		return "graphic novel style, comic book art, high contrast, "
	case StyleRealisticAnime:
		return "realistic anime style, detailed, makoto shinkai style, "
	case StylePhotorealism:
		return "photorealistic, 8k, highly detailed, realistic texture, "
	case StyleUserDefined:
		if customStyle != "" {
			return customStyle + ", "
		}
		return ""
	default:
		return ""
	}
}
