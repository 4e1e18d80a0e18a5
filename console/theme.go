package console

import "strconv"

type rgb struct {
	r int
	g int
	b int
}

type theme struct {
	Name          string
	HeaderBG      rgb
	HeaderFG      rgb
	StatusFG      rgb
	SystemFG      rgb
	ErrorFG       rgb
	ThinkingFG    rgb
	ToolRunningFG rgb
	ToolDoneFG    rgb
	SandboxFG     rgb
	PanelTitleFG  rgb
	TaskbarBG     rgb
	TaskbarFG     rgb
	PromptFG      rgb
	TodoDoneFG    rgb
}

const defaultThemeName = "dark"

var themes = map[string]theme{
	"dark": {
		Name:          "dark",
		HeaderBG:      rgb{r: 26, g: 27, b: 38},
		HeaderFG:      rgb{r: 192, g: 202, b: 245},
		StatusFG:      rgb{r: 122, g: 162, b: 247},
		SystemFG:      rgb{r: 127, g: 133, b: 163},
		ErrorFG:       rgb{r: 247, g: 118, b: 142},
		ThinkingFG:    rgb{r: 122, g: 162, b: 247},
		ToolRunningFG: rgb{r: 224, g: 175, b: 104},
		ToolDoneFG:    rgb{r: 158, g: 206, b: 106},
		SandboxFG:     rgb{r: 169, g: 177, b: 214},
		PanelTitleFG:  rgb{r: 187, g: 154, b: 247},
		TaskbarBG:     rgb{r: 26, g: 27, b: 38},
		TaskbarFG:     rgb{r: 192, g: 202, b: 245},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		TodoDoneFG:    rgb{r: 158, g: 206, b: 106},
	},
	"gruvbox": {
		Name:          "gruvbox",
		HeaderBG:      rgb{r: 60, g: 56, b: 54},
		HeaderFG:      rgb{r: 235, g: 219, b: 178},
		StatusFG:      rgb{r: 131, g: 165, b: 152},
		SystemFG:      rgb{r: 146, g: 131, b: 116},
		ErrorFG:       rgb{r: 251, g: 73, b: 52},
		ThinkingFG:    rgb{r: 131, g: 165, b: 152},
		ToolRunningFG: rgb{r: 250, g: 189, b: 47},
		ToolDoneFG:    rgb{r: 184, g: 187, b: 38},
		SandboxFG:     rgb{r: 213, g: 196, b: 161},
		PanelTitleFG:  rgb{r: 211, g: 134, b: 155},
		TaskbarBG:     rgb{r: 60, g: 56, b: 54},
		TaskbarFG:     rgb{r: 235, g: 219, b: 178},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		TodoDoneFG:    rgb{r: 184, g: 187, b: 38},
	},
	"outrun": {
		Name:          "outrun",
		HeaderBG:      rgb{r: 32, g: 8, b: 56},
		HeaderFG:      rgb{r: 240, g: 241, b: 255},
		StatusFG:      rgb{r: 110, g: 136, b: 255},
		SystemFG:      rgb{r: 154, g: 163, b: 178},
		ErrorFG:       rgb{r: 255, g: 107, b: 107},
		ThinkingFG:    rgb{r: 110, g: 136, b: 255},
		ToolRunningFG: rgb{r: 255, g: 91, b: 189},
		ToolDoneFG:    rgb{r: 112, g: 214, b: 255},
		SandboxFG:     rgb{r: 154, g: 182, b: 255},
		PanelTitleFG:  rgb{r: 255, g: 91, b: 189},
		TaskbarBG:     rgb{r: 32, g: 8, b: 56},
		TaskbarFG:     rgb{r: 240, g: 241, b: 255},
		PromptFG:      rgb{r: 255, g: 255, b: 255},
		TodoDoneFG:    rgb{r: 112, g: 214, b: 255},
	},
}

func themeForName(name string) theme {
	if name == "" {
		name = defaultThemeName
	}
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[defaultThemeName]
}

func ansiFgRGB(c rgb) string {
	return "\x1b[38;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}

func ansiBgRGB(c rgb) string {
	return "\x1b[48;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}
