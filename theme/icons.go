package theme

import "os"

// Icons used in command output. Nerd Font glyphs are used when
// HOOKCFG_ICONS=nerd, plain unicode otherwise.
var (
	IconSuccess = pick("\U000F012C", "✓")
	IconError   = pick("\uEA87", "✗")
	IconWarning = pick("\uF071", "!")
	IconInfo    = pick("\U000F02FC", "i")
	IconRunning = pick("\uF021", "~")
	IconSkipped = pick("\U000F04AD", "-")
	IconBullet  = pick("\uF444", "•")
	IconArrow   = pick("\U000F0054", "→")
)

func pick(nerd, plain string) string {
	if os.Getenv("HOOKCFG_ICONS") == "nerd" {
		return nerd
	}
	return plain
}
