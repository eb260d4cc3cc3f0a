package common

// SessionCookieName is the HTTP-only cookie carrying the session secret.
const SessionCookieName = "store-session"

// MaxFileSize is the largest upload accepted by the server (50 MB).
const MaxFileSize int64 = 50 * 1024 * 1024

// OneTimeCodeLength is the number of digits in an emailed sign-in code.
const OneTimeCodeLength = 6

// PlaceholderAvatars are the stock avatar images a user can pick instead of
// uploading one.
var PlaceholderAvatars = []string{
	"https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg",
	"https://img.freepik.com/free-photo/cartoon-character-with-fashion-bag_71767-98.jpg",
}
