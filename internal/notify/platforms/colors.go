package platforms

const (
	ColorSettled = 0x3BA55D
	ColorWarn    = 0xFEE75C
)
