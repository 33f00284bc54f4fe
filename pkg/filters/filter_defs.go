package filters

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Group names, in sidebar order.
const (
	GroupColorStyle   = "Color Style"
	GroupTemperature  = "Temperature"
	GroupEnhancement  = "Enhancement"
	GroupCinematic    = "Cinematic"
	GroupSocialMedia  = "Social Media"
	GroupRetro        = "Retro"
	GroupProjectorFix = "Projector Fix"
	GroupResolution   = "Resolution"
)

// Group is a named set of presets. At most one member of an exclusive group
// may be active at a time.
type Group struct {
	Name      string `json:"name"`
	Exclusive bool   `json:"exclusive"`
}

// Preset is one entry of the preset filter catalog.
type Preset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group"`
}

var Groups = []Group{
	{Name: GroupColorStyle, Exclusive: true},
	{Name: GroupTemperature, Exclusive: true},
	{Name: GroupEnhancement, Exclusive: false},
	{Name: GroupCinematic, Exclusive: false},
	{Name: GroupSocialMedia, Exclusive: true},
	{Name: GroupRetro, Exclusive: true},
	{Name: GroupProjectorFix, Exclusive: false},
	{Name: GroupResolution, Exclusive: true},
}

var Catalog = []Preset{
	{ID: "vintage", Name: "Vintage", Description: "Classic film grain look", Group: GroupColorStyle},
	{ID: "black_white", Name: "Black & White", Description: "Monochrome effect", Group: GroupColorStyle},
	{ID: "sepia", Name: "Sepia", Description: "Warm brown tone", Group: GroupColorStyle},
	{ID: "cyberpunk", Name: "Cyberpunk", Description: "Neon blue/purple tint", Group: GroupColorStyle},
	{ID: "sunset", Name: "Sunset", Description: "Orange/pink warm glow", Group: GroupColorStyle},
	{ID: "noir", Name: "Film Noir", Description: "High contrast B&W", Group: GroupColorStyle},
	{ID: "pastel", Name: "Pastel", Description: "Soft, muted colors", Group: GroupColorStyle},
	{ID: "faded", Name: "Faded", Description: "Washed out, aged look", Group: GroupColorStyle},

	{ID: "warm", Name: "Warm", Description: "Warmer color temperature", Group: GroupTemperature},
	{ID: "cool", Name: "Cool", Description: "Cooler color temperature", Group: GroupTemperature},
	{ID: "arctic", Name: "Arctic", Description: "Very cool, icy blue", Group: GroupTemperature},
	{ID: "golden_hour", Name: "Golden Hour", Description: "Warm golden light", Group: GroupTemperature},

	{ID: "enhance", Name: "Auto Enhance", Description: "Automatic enhancement", Group: GroupEnhancement},
	{ID: "dramatic", Name: "Dramatic", Description: "High contrast dramatic look", Group: GroupEnhancement},
	{ID: "vibrant", Name: "Vibrant", Description: "Boost color saturation", Group: GroupEnhancement},
	{ID: "crisp", Name: "Crisp", Description: "Enhanced sharpness", Group: GroupEnhancement},
	{ID: "soft", Name: "Soft", Description: "Dreamy, soft appearance", Group: GroupEnhancement},
	{ID: "matte", Name: "Matte", Description: "Flat, desaturated look", Group: GroupEnhancement},

	{ID: "blockbuster", Name: "Blockbuster", Description: "Hollywood movie look", Group: GroupCinematic},
	{ID: "indie", Name: "Indie Film", Description: "Independent film aesthetic", Group: GroupCinematic},
	{ID: "horror", Name: "Horror", Description: "Dark, eerie atmosphere", Group: GroupCinematic},
	{ID: "romantic", Name: "Romantic", Description: "Soft, warm romantic feel", Group: GroupCinematic},
	{ID: "action", Name: "Action", Description: "High energy, sharp contrast", Group: GroupCinematic},

	{ID: "instagram", Name: "Instagram", Description: "Social media optimized", Group: GroupSocialMedia},
	{ID: "tiktok", Name: "TikTok", Description: "Trendy, vibrant colors", Group: GroupSocialMedia},
	{ID: "youtube", Name: "YouTube", Description: "Thumbnail-friendly look", Group: GroupSocialMedia},

	{ID: "retro_80s", Name: "80s Retro", Description: "Neon synthwave aesthetic", Group: GroupRetro},
	{ID: "retro_90s", Name: "90s Nostalgia", Description: "VHS tape look", Group: GroupRetro},
	{ID: "polaroid", Name: "Polaroid", Description: "Instant photo effect", Group: GroupRetro},
	{ID: "film_grain", Name: "Film Grain", Description: "Analog film texture", Group: GroupRetro},

	{ID: "projector_enhance", Name: "Projector Enhance", Description: "Overall projector recording fix", Group: GroupProjectorFix},
	{ID: "keystone_correct", Name: "Keystone Correct", Description: "Fix trapezoidal distortion", Group: GroupProjectorFix},
	{ID: "contrast_boost", Name: "Contrast Boost", Description: "Enhance washed out projector image", Group: GroupProjectorFix},
	{ID: "color_recover", Name: "Color Recovery", Description: "Restore faded projector colors", Group: GroupProjectorFix},
	{ID: "screen_flatten", Name: "Screen Flatten", Description: "Remove screen texture/wrinkles", Group: GroupProjectorFix},
	{ID: "brightness_fix", Name: "Brightness Fix", Description: "Fix dim projector recording", Group: GroupProjectorFix},
	{ID: "ambient_remove", Name: "Ambient Light Remove", Description: "Reduce ambient light washout", Group: GroupProjectorFix},
	{ID: "focus_sharpen", Name: "Focus Sharpen", Description: "Fix blurry projector image", Group: GroupProjectorFix},

	{ID: "upscale_2x", Name: "Upscale 2x", Description: "Double resolution", Group: GroupResolution},
	{ID: "upscale_4x", Name: "Upscale 4x", Description: "Quadruple resolution", Group: GroupResolution},
}

var (
	presetsByID  = indexPresets()
	groupsByName = indexGroups()
)

func indexPresets() map[string]Preset {
	m := make(map[string]Preset, len(Catalog))
	for _, p := range Catalog {
		m[p.ID] = p
	}
	return m
}

func indexGroups() map[string]Group {
	m := make(map[string]Group, len(Groups))
	for _, g := range Groups {
		m[g.Name] = g
	}
	return m
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Preset, bool) {
	p, ok := presetsByID[id]
	return p, ok
}

// GroupOf returns the group a preset belongs to.
func GroupOf(id string) (Group, bool) {
	p, ok := presetsByID[id]
	if !ok {
		return Group{}, false
	}
	g, ok := groupsByName[p.Group]
	return g, ok
}

// GroupPresets pairs a group with its members, for grouped listings.
type GroupPresets struct {
	Group   Group    `json:"group"`
	Presets []Preset `json:"presets"`
}

// ByGroup returns the catalog grouped in sidebar order.
func ByGroup() []GroupPresets {
	out := make([]GroupPresets, 0, len(Groups))
	for _, g := range Groups {
		gp := GroupPresets{Group: g}
		for _, p := range Catalog {
			if p.Group == g.Name {
				gp.Presets = append(gp.Presets, p)
			}
		}
		out = append(out, gp)
	}
	return out
}

// Label returns the display name for a preset id. Unknown ids are
// title-cased from their snake_case form.
func Label(id string) string {
	if p, ok := presetsByID[id]; ok {
		return p.Name
	}
	name := strings.ReplaceAll(id, "_", " ")
	return cases.Title(language.AmericanEnglish).String(name)
}
