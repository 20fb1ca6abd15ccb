package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrLoginRequired      ErrCode = "LOGIN_REQUIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"
	ErrSuperAdminAccess ErrCode = "SUPER_ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam attempt ──────────────────────────────────────────────────
	ErrAttemptNotFound     ErrCode = "ATTEMPT_NOT_FOUND"
	ErrTimeExpired         ErrCode = "TIME_EXPIRED"
	ErrSubmitInFlight      ErrCode = "SUBMIT_IN_FLIGHT"
	ErrAlreadySubmitted    ErrCode = "ALREADY_SUBMITTED"
	ErrSubmissionCancelled ErrCode = "SUBMISSION_CANCELLED"
	ErrUnknownQuestion     ErrCode = "UNKNOWN_QUESTION"

	// ─── Upstream API ──────────────────────────────────────────────────
	ErrUpstream            ErrCode = "UPSTREAM_ERROR"
	ErrUpstreamUnreachable ErrCode = "UPSTREAM_UNREACHABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// All user-facing copy is Arabic.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "البريد الإلكتروني أو كلمة المرور غير صحيحة."
	case ErrSessionInvalidated:
		return "انتهت جلستك. يرجى تسجيل الدخول مرة أخرى."
	case ErrLoginRequired:
		return "يجب تسجيل الدخول للوصول إلى هذه الصفحة."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "ليس لديك صلاحية للوصول إلى هذا المورد."
	case ErrAdminAccessOnly:
		return "هذا المورد مخصص للمشرفين فقط."
	case ErrSuperAdminAccess:
		return "هذا الإجراء مخصص للمشرف الأعلى فقط."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "فشل التحقق من البيانات. يرجى مراجعة المدخلات."
	case ErrInvalidPayload:
		return "بيانات الطلب غير صالحة."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "المورد غير موجود."

	// ─── Exam attempt ──────────────────────────────────────────────────
	case ErrAttemptNotFound:
		return "لا توجد محاولة امتحان نشطة. ابدأ الامتحان أولاً."
	case ErrTimeExpired:
		return "انتهى وقت الامتحان، لا يمكن الإرسال يدوياً."
	case ErrSubmitInFlight:
		return "جاري إرسال إجاباتك بالفعل."
	case ErrAlreadySubmitted:
		return "تم إرسال هذا الامتحان من قبل."
	case ErrSubmissionCancelled:
		return "تم إلغاء الإرسال."
	case ErrUnknownQuestion:
		return "هذا السؤال ليس ضمن الامتحان."

	// ─── Upstream API ──────────────────────────────────────────────────
	case ErrUpstream:
		return "حدث خطأ من الخادم. حاول مرة أخرى."
	case ErrUpstreamUnreachable:
		return "فشل الاتصال بالخادم. تحقق من اتصالك بالإنترنت."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "حدث خطأ داخلي في الخادم."
	default:
		return "حدث خطأ غير متوقع."
	}
}
