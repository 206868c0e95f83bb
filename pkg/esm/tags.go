package esm

// Record tags.
var (
	TagTES3 = MakeTag("TES3")
	TagSTAT = MakeTag("STAT")
	TagDOOR = MakeTag("DOOR")
	TagACTI = MakeTag("ACTI")
	TagCONT = MakeTag("CONT")
	TagLIGH = MakeTag("LIGH")
	TagNPC_ = MakeTag("NPC_")
	TagCREA = MakeTag("CREA")
	TagRACE = MakeTag("RACE")
	TagBODY = MakeTag("BODY")
	TagWEAP = MakeTag("WEAP")
	TagARMO = MakeTag("ARMO")
	TagCLOT = MakeTag("CLOT")
	TagLTEX = MakeTag("LTEX")
	TagCELL = MakeTag("CELL")
	TagLAND = MakeTag("LAND")
)

// Subrecord tags.
var (
	subHEDR = MakeTag("HEDR")
	subMAST = MakeTag("MAST")
	subDATA = MakeTag("DATA")
	subNAME = MakeTag("NAME")
	subMODL = MakeTag("MODL")
	subFNAM = MakeTag("FNAM")
	subSCRI = MakeTag("SCRI")
	subSCPT = MakeTag("SCPT")
	subSNAM = MakeTag("SNAM")
	subANAM = MakeTag("ANAM")
	subBNAM = MakeTag("BNAM")
	subCNAM = MakeTag("CNAM")
	subDNAM = MakeTag("DNAM")
	subKNAM = MakeTag("KNAM")
	subRNAM = MakeTag("RNAM")
	subTNAM = MakeTag("TNAM")
	subDELE = MakeTag("DELE")
	subCNDT = MakeTag("CNDT")
	subFLAG = MakeTag("FLAG")
	subNPCO = MakeTag("NPCO")
	subNPCS = MakeTag("NPCS")
	subNPDT = MakeTag("NPDT")
	subITEX = MakeTag("ITEX")
	subENAM = MakeTag("ENAM")
	subLHDT = MakeTag("LHDT")
	subXSCL = MakeTag("XSCL")
	subRADT = MakeTag("RADT")
	subDESC = MakeTag("DESC")
	subBYDT = MakeTag("BYDT")
	subWPDT = MakeTag("WPDT")
	subAODT = MakeTag("AODT")
	subCTDT = MakeTag("CTDT")
	subINDX = MakeTag("INDX")
	subINTV = MakeTag("INTV")
	subRGNN = MakeTag("RGNN")
	subNAM0 = MakeTag("NAM0")
	subNAM5 = MakeTag("NAM5")
	subNAM9 = MakeTag("NAM9")
	subWHGT = MakeTag("WHGT")
	subAMBI = MakeTag("AMBI")
	subFRMR = MakeTag("FRMR")
	subMVRF = MakeTag("MVRF")
	subUNAM = MakeTag("UNAM")
	subXSOL = MakeTag("XSOL")
	subXCHG = MakeTag("XCHG")
	subDODT = MakeTag("DODT")
	subFLTV = MakeTag("FLTV")
	subVNML = MakeTag("VNML")
	subVHGT = MakeTag("VHGT")
	subWNAM = MakeTag("WNAM")
	subVCLR = MakeTag("VCLR")
	subVTEX = MakeTag("VTEX")
)
