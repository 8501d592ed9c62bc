package pica

import "pica/emu/log"

const (
	NumLightingLuts    = 24
	LightingLutSize    = 256
	FogLutSize         = 128
	procTexSmallLutLen = 128
	procTexLargeLutLen = 256
)

// ProcTexTable selects the procedural texture table written through the
// lookup table data registers.
type ProcTexTable uint32

const (
	ProcTexNoise ProcTexTable = iota
	ProcTexRGBMap
	ProcTexAlphaMap
	ProcTexColor
	ProcTexColorDiff
)

// LookupTables holds the lighting, fog and procedural texture tables.
type LookupTables struct {
	Lighting [NumLightingLuts][LightingLutSize]uint32
	Fog      [FogLutSize]uint32

	ProcTexNoise     [procTexSmallLutLen]uint32
	ProcTexRGBMap    [procTexSmallLutLen]uint32
	ProcTexAlphaMap  [procTexSmallLutLen]uint32
	ProcTexColor     [procTexLargeLutLen]uint32
	ProcTexColorDiff [procTexLargeLutLen]uint32
}

func (t *LookupTables) writeLighting(regs *Regs, val uint32) {
	table, index := regs.lightingLut()
	if table >= NumLightingLuts {
		log.ModPica.ErrorZ("invalid lighting lut").Uint("table", uint64(table)).End()
		return
	}
	t.Lighting[table][index] = val
	regs.setBits(RegLightingLutConfig, 0, 8, index+1)
}

func (t *LookupTables) writeFog(regs *Regs, val uint32) {
	offset := regs.bits(RegFogLutOffset, 0, 8)
	t.Fog[offset%FogLutSize] = val
	regs.setBits(RegFogLutOffset, 0, 8, offset+1)
}

func (t *LookupTables) writeProcTex(regs *Regs, val uint32) {
	table, index := regs.procTexLut()
	var lut []uint32
	switch table {
	case ProcTexNoise:
		lut = t.ProcTexNoise[:]
	case ProcTexRGBMap:
		lut = t.ProcTexRGBMap[:]
	case ProcTexAlphaMap:
		lut = t.ProcTexAlphaMap[:]
	case ProcTexColor:
		lut = t.ProcTexColor[:]
	case ProcTexColorDiff:
		lut = t.ProcTexColorDiff[:]
	default:
		log.ModPica.ErrorZ("invalid proctex lut").Uint("table", uint64(table)).End()
		return
	}
	lut[index%uint32(len(lut))] = val
	regs.setBits(RegProcTexLutConfig, 0, 8, index+1)
}
