// Package protocol implements the FPM10 wire-level command encoding: the
// confirmation-code table, instruction opcodes, command payload builders
// and reply parsers, session parameters, and the error taxonomy. It knows
// nothing about serial ports or timing — that lives in package transport —
// and nothing about multi-step procedures — that lives in package
// workflow.
package protocol

// Confirmation codes, the first payload byte of every Ack packet.
const (
	CCOk                  byte = 0x00
	CCPacketReceiveError  byte = 0x01
	CCNoFinger            byte = 0x02
	CCImageCaptureFailed  byte = 0x03
	CCImageTooDisordered  byte = 0x06
	CCTooFewFeaturePoints byte = 0x07
	CCTemplatesNoMatch    byte = 0x08
	CCNoMatchInLibrary    byte = 0x09
	CCEnrolMismatch       byte = 0x0A
	CCSlotOutOfRange      byte = 0x0B
	CCTemplateReadError   byte = 0x0C
	CCTemplateUploadError byte = 0x0D
	CCCannotAcceptData    byte = 0x0E
	CCImageUploadError    byte = 0x0F
	CCDeleteFailed        byte = 0x10
	CCLibraryClearFailed  byte = 0x11
	CCIncorrectPassword   byte = 0x13
	CCImageInvalid        byte = 0x15
	CCFlashWriteError     byte = 0x18
	CCInvalidRegister     byte = 0x1A
	CCWrongAddress        byte = 0x20
	CCPasswordNotVerified byte = 0x21
)

// Instruction opcodes, the first payload byte of every Command packet.
const (
	ICGetImage       byte = 0x01
	ICImage2Tz       byte = 0x02
	ICMatch          byte = 0x03
	ICSearch         byte = 0x04
	ICCreateModel    byte = 0x05
	ICStore          byte = 0x06
	ICLoadChar       byte = 0x07
	ICDownloadChar   byte = 0x08
	ICUploadChar     byte = 0x09
	ICDownloadImage  byte = 0x0A
	ICUploadImage    byte = 0x0B
	ICDeleteChar     byte = 0x0C
	ICEmptyLib       byte = 0x0D
	ICReadSysParam   byte = 0x0F
	ICVerifyPassword byte = 0x13
	ICTemplateCount  byte = 0x1D
)

// Char buffer identifiers.
const (
	CharBuffer1 byte = 0x01
	CharBuffer2 byte = 0x02
)

// ImageRows and ImageCols are the resolution of the device's volatile
// image buffer.
const (
	ImageRows = 288
	ImageCols = 256
)
