package cmd

// Config carries everything the process needs from the environment.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string

	// PaymentProvider selects the wired gateway: "phonepe" or "razorpay".
	PaymentProvider string

	PhonePeBaseURL     string
	PhonePeMerchantID  string
	PhonePeSaltKey     string
	PhonePeSaltIndex   string
	PhonePeRedirectURL string
	PhonePeCallbackURL string

	RazorpayKeyID       string
	RazorpayKeySecret   string
	RazorpayCheckoutURL string

	PushEndpoint string
	PushAPIKey   string
}
