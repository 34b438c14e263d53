package protocol

const (
	Version         byte   = '1'
	emptyFieldChar  string = "-" // NILVALUE
	fieldSeparator  byte   = ' '
	fieldSubstitute byte   = '_'

	// Header field lengths (RFC 5424 section 6)
	maxHostnameLen int = 255
	maxAppNameLen  int = 48
	maxProcIDLen   int = 128
	maxMsgIDLen    int = 32

	// Sub-second precision carried on the wire (TIME-SECFRAC allows up to 6 digits)
	TimestampLayout string = "2006-01-02T15:04:05.000000Z07:00"

	// Characters removed from the end of message text before transmission
	trailingCutset string = " \t\r\n"
)
