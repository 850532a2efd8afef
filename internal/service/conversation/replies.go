package conversation

// Reply texts for each step of the registration flow. The greeting and the
// name prompt are a single message so a first contact produces exactly one
// send.
const (
	replyGreeting = "سلام 👋 به ربات دیجیتال مارکتینگ خوش آمدید!\n" +
		"ما آموزش و راه‌اندازی بیزنس آنلاین، اتوماسیون و دیجیتال مارکتینگ را برای همه ساده کرده‌ایم.\n\n" +
		"📝 برای ثبت‌نام لطفاً نام خود را وارد کنید:"
	replyAskEmail     = "متشکرم! حالا لطفاً ایمیل خود را وارد کنید:"
	replyInvalidEmail = "ایمیل واردشده معتبر نیست، لطفاً دوباره وارد کنید:"
	replyConfirmed    = "✅ اطلاعات شما با موفقیت ثبت شد!\n\nاز منوی زیر گزینه‌ی دیگری را انتخاب کنید:"
	replySinkFailed   = "⚠️ متاسفانه در ثبت اطلاعات مشکلی پیش آمد، لطفاً بعداً دوباره تلاش کنید."
	replyFallback     = "من متوجه نشدم، لطفاً نام خود را وارد کنید تا ثبت‌نام را شروع کنیم 👇"
	menuText          = "منوی اصلی 👇"
)

// mainMenu mirrors the four-button quick-reply menu shown after a
// completed registration.
var mainMenu = []QuickReply{
	{Title: "شروع 🏁", Payload: "START"},
	{Title: "درباره ما 📘", Payload: "ABOUT"},
	{Title: "ثبت‌نام 📝", Payload: "REGISTER"},
	{Title: "رزرو جلسه 📅", Payload: "BOOK"},
}
