package domain

// Filter names known to appear in the mosaic product catalogs.
// The product map is keyed by these strings; catalogs may add more.
const (
	FilterVIS        = "VIS"
	FilterNIRY       = "NIR_Y"
	FilterNIRJ       = "NIR_J"
	FilterNIRH       = "NIR_H"
	FilterDECamG     = "DECAM_g"
	FilterDECamI     = "DECAM_i"
	FilterDECamR     = "DECAM_r"
	FilterDECamZ     = "DECAM_z"
	FilterHSCG       = "HSC_g"
	FilterHSCI       = "HSC_i"
	FilterHSCI2      = "HSC_i2"
	FilterHSCR       = "HSC_r"
	FilterHSCR2      = "HSC_r2"
	FilterHSCZ       = "HSC_z"
	FilterMegaCamR   = "MEGACAM_r"
	FilterMegaCamU   = "MEGACAM_u"
	FilterPanSTARRSI = "PANSTARRS_i"
)
