package email

// Email templates using HTML

const statementTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        .info-box { background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .info-value { font-weight: 600; }
        .total-box { background: #1f2937; color: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .total-row { display: flex; justify-content: space-between; padding: 8px 0; }
        .total-amount { font-size: 24px; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Multibot</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Estado de cuenta</p>
    </div>
    <div class="content">
        <h2>{{.Bot}}</h2>
        <p>Periodo: {{.From}} a {{.To}}</p>

        <div class="info-box">
            <div class="info-row">
                <span class="info-label">Conversaciones procesadas</span>
                <span class="info-value">{{.Requests}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Tokens de entrada</span>
                <span class="info-value">{{.InputTokens}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Tokens de salida</span>
                <span class="info-value">{{.OutputTokens}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Uso de modelo</span>
                <span class="info-value">$ {{.OpenAICost}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Mensajería ({{.TwilioCount}} mensajes)</span>
                <span class="info-value">$ {{.TwilioCost}}</span>
            </div>
            {{if .ServiceLabel}}
            <div class="info-row">
                <span class="info-label">{{.ServiceLabel}}</span>
                <span class="info-value">$ {{.ServiceAmount}}</span>
            </div>
            {{end}}
        </div>

        <div class="total-box">
            <div class="total-row">
                <span>Total</span>
                <span class="total-amount">$ {{.Total}}</span>
            </div>
        </div>

        <p>Gracias por confiar en nosotros.</p>
    </div>
    <div class="footer">
        <p>Este es un mensaje automático. Por favor no responda a este correo.</p>
    </div>
</body>
</html>
`
