package protocol

// Command payload builders. Each returns the Command packet's payload —
// opcode first, followed by the instruction's arguments, big-endian. The
// caller (package sensor) is responsible for framing the payload as a
// Command packet and waiting for the Ack.

// BuildGetImage builds the GetImage command payload.
func BuildGetImage() []byte {
	return []byte{ICGetImage}
}

// BuildImage2Tz builds the Image2Tz command payload for the given char
// buffer (1 or 2).
func BuildImage2Tz(buf byte) []byte {
	return []byte{ICImage2Tz, buf}
}

// BuildMatch builds the Match command payload.
func BuildMatch() []byte {
	return []byte{ICMatch}
}

// BuildSearch builds the Search command payload: search char buffer1
// against [start, start+count) of the library.
func BuildSearch(start, count int) []byte {
	return []byte{
		ICSearch, CharBuffer1,
		byte(start >> 8), byte(start),
		byte(count >> 8), byte(count),
	}
}

// BuildCreateModel builds the CreateModel command payload.
func BuildCreateModel() []byte {
	return []byte{ICCreateModel}
}

// BuildStore builds the Store command payload: persist buf at slot.
func BuildStore(buf byte, slot int) []byte {
	return []byte{ICStore, buf, byte(slot >> 8), byte(slot)}
}

// BuildLoadChar builds the LoadChar command payload: load slot into buf.
func BuildLoadChar(buf byte, slot int) []byte {
	return []byte{ICLoadChar, buf, byte(slot >> 8), byte(slot)}
}

// BuildDownloadChar builds the DownloadChar command payload.
func BuildDownloadChar(buf byte) []byte {
	return []byte{ICDownloadChar, buf}
}

// BuildUploadChar builds the UploadChar command payload.
func BuildUploadChar(buf byte) []byte {
	return []byte{ICUploadChar, buf}
}

// BuildDownloadImage builds the DownloadImage command payload.
func BuildDownloadImage() []byte {
	return []byte{ICDownloadImage}
}

// BuildUploadImage builds the UploadImage command payload.
func BuildUploadImage() []byte {
	return []byte{ICUploadImage}
}

// BuildDeleteChar builds the DeleteChar command payload: delete count
// templates starting at slot.
func BuildDeleteChar(slot, count int) []byte {
	return []byte{
		ICDeleteChar,
		byte(slot >> 8), byte(slot),
		byte(count >> 8), byte(count),
	}
}

// BuildEmptyLib builds the EmptyLib command payload.
func BuildEmptyLib() []byte {
	return []byte{ICEmptyLib}
}

// BuildReadSysParam builds the ReadSysParam command payload.
func BuildReadSysParam() []byte {
	return []byte{ICReadSysParam}
}

// BuildVerifyPassword builds the VerifyPassword command payload.
func BuildVerifyPassword(password uint32) []byte {
	return []byte{
		ICVerifyPassword,
		byte(password >> 24), byte(password >> 16),
		byte(password >> 8), byte(password),
	}
}

// BuildTemplateCount builds the TemplateCount command payload.
func BuildTemplateCount() []byte {
	return []byte{ICTemplateCount}
}
