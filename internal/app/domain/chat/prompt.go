package chat

import (
	"fmt"
	"strings"

	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/platform/booking"
)

const promptHeader = `You are an intelligent AI travel agent. Your goal is to help users plan their perfect trip by gathering information and providing real hotel recommendations from Booking.com.

CONVERSATION STAGE RULES:
`

const stageDestination = `
STAGE 1: GET DESTINATION
- Ask where they want to travel
- Be friendly and conversational
- KEEP YOUR RESPONSE TO MAX 2 SENTENCES`

const stageDates = `
STAGE 2: GET DATES
- Ask for their travel dates (check-in and check-out)
- KEEP YOUR RESPONSE TO MAX 2 SENTENCES`

const stageBudget = `
STAGE 3: GET BUDGET
- Ask for their budget for accommodation
- KEEP YOUR RESPONSE TO MAX 2 SENTENCES`

const promptFooter = `

GENERAL RULES:
- Be conversational, friendly, and helpful
- Ask ONE question at a time
- Extract information from user responses
- Once you have destination, dates, and budget, provide the Booking.com hotel

CRITICAL - INFORMATION EXTRACTION:
After each user response, extract structured data and return it at the END of your message.
Format: |||EXTRACT|||{json}|||END|||

Extract these fields:
{
  "destination": "string | null",
  "arrival_date": "string | null (format: YYYY-MM-DD)",
  "departure_date": "string | null (format: YYYY-MM-DD)",
  "budget": "string | null"
}

- When the user gives dates (e.g., "11 april 12 april"), parse them into "YYYY-MM-DD" format.
- If user provides two dates, fill both arrival_date and departure_date.

ALWAYS include the extraction block: |||EXTRACT|||{}|||END|||`

// buildSystemPrompt assembles the staged instruction for the model. The
// stage advances as preferences fill in; once the trip is fully specified a
// live Booking.com hotel is pinned into the prompt so the model cannot
// invent one.
func buildSystemPrompt(prefs models.TripPreferences, hotel *booking.HotelResult) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	hasDestination := prefs.Destination != nil && *prefs.Destination != ""
	hasDates := prefs.ArrivalDate != nil && *prefs.ArrivalDate != "" &&
		prefs.DepartureDate != nil && *prefs.DepartureDate != ""
	hasBudget := prefs.Budget != nil && *prefs.Budget != ""

	switch {
	case !hasDestination:
		b.WriteString(stageDestination)
	case !hasDates:
		b.WriteString(stageDates)
	case !hasBudget:
		b.WriteString(stageBudget)
	default:
		fmt.Fprintf(&b, `
STAGE 4: PROVIDE HOTEL RECOMMENDATIONS
Current Trip Details:
- Destination: %s
- Check-in: %s
- Check-out: %s
- Budget: %s`,
			*prefs.Destination, *prefs.ArrivalDate, *prefs.DepartureDate, *prefs.Budget)

		if hotel != nil {
			fmt.Fprintf(&b, `

🏨 **REAL HOTEL FROM BOOKING.COM:**

You MUST include this exact hotel recommendation in your response:

**%s**
📍 Location: %s
💰 Price: %s %.2f for the entire stay
📝 %s
🔗 Book now: %s

INSTRUCTIONS:
1. Start by saying you found a hotel on Booking.com
2. Copy the hotel details EXACTLY as shown
3. Include the booking link
4. Keep your response SHORT
5. Do NOT suggest other hotels
6. Do NOT make up details`,
				hotel.Name, hotel.Destination, hotel.Currency, hotel.Price,
				hotel.Description, hotel.BookingURL)
		}
	}

	b.WriteString(promptFooter)
	return b.String()
}
