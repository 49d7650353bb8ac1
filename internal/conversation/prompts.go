package conversation

import "fmt"

const (
	noticeFollowFlow = "Please provide the required information for the current step."
	noticeCancelled  = "Application cancelled. Use /start to begin again."
)

func promptFormConfirm(_ *Flow, _ *Session) Reply {
	return Reply{
		Text: "👋 *Welcome to Gebeta Tutors Application Bot!*\n\nHave you already filled out our Google Form?",
		Buttons: [][]Button{{
			{Label: "Yes, I have.", Data: ButtonYesForm},
			{Label: "No, I haven't.", Data: ButtonNoForm},
		}},
	}
}

func promptFormLink(f *Flow, _ *Session) Reply {
	return Reply{
		Text: fmt.Sprintf("Please fill out the Google Form here:\n\n🔗 *%s*\n\nClick the button once you are done.", f.links.FormURL),
		Buttons: [][]Button{{
			{Label: "I have completed the form.", Data: ButtonFormCompleted},
		}},
	}
}

func promptName(_ *Flow, _ *Session) Reply {
	return Reply{Text: "Great! To begin your Telegram application, please send us your full name."}
}

func promptPosition(_ *Flow, s *Session) Reply {
	return Reply{Text: fmt.Sprintf("Thank you, %s. Now, please enter the specific job position you are applying for as per the job post code (e.g., GT-1023).", s.Record.FullName)}
}

func promptLocation(_ *Flow, _ *Session) Reply {
	return Reply{Text: "Please provide your living address and your preferred working address/city (e.g., Living: Megenagna; Working: Mexico)."}
}

func promptExperience(_ *Flow, _ *Session) Reply {
	return Reply{Text: "📝 Please mention your experience (if any). Specify your experience as in National curriculum, International curriculum, and General teaching or tutoring experience."}
}

func promptGroupLink(f *Flow, _ *Session) Reply {
	return Reply{
		Text: fmt.Sprintf("The next step is to add at least 20 people in our tutors circle group, adding more people is a plus:\n\n🔗 *%s*\n\nClick the button below to confirm you have added.", f.links.GroupURL),
		Buttons: [][]Button{{
			{Label: "I have added people to the group.", Data: ButtonGroupJoined},
		}},
	}
}

func promptCompleted(_ *Flow, _ *Session) Reply {
	return Reply{Text: "✅ Thank you! We have received your complete application. We will review it and get back to you soon."}
}
